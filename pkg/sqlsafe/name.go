// Package sqlsafe screens AI-derived strings before they are interpolated
// into DDL statements or queries against the streaming engine.
package sqlsafe

import (
	"fmt"
	"regexp"

	libinjection "github.com/corazawaf/libinjection-go"

	"github.com/streamsynth-io/streamsynth-engine/pkg/apperrors"
)

// identifierPattern matches a bare SQL identifier. Engine object names are
// never quoted in the generated DDL, so anything else is rejected.
var identifierPattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]{0,63}$`)

// ValidateObjectName rejects names that are not plain identifiers or that
// trip libinjection's SQLi detector. Model output reaches DDL and query
// text only through names that pass this check.
func ValidateObjectName(name string) error {
	if !identifierPattern.MatchString(name) {
		return fmt.Errorf("%w: %q is not a valid identifier", apperrors.ErrUnsafeName, name)
	}

	if isSQLi, fingerprint := libinjection.IsSQLi(name); isSQLi {
		return fmt.Errorf("%w: %q matches injection fingerprint %s",
			apperrors.ErrUnsafeName, name, string(fingerprint))
	}

	return nil
}
