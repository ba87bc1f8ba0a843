package tuning

import (
	"maps"
	"os"
	"regexp"
	"slices"
	"strings"
)

// Masks literal dollars while the reference scan runs.
const literalDollar = "\x00FETCHOPS_TUNING_DOLLAR\x00"

var envRefPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// ExpandEnvStrict expands $VAR and ${VAR} references in s via
// os.ExpandEnv, with two strict additions: a ${VAR} whose variable is
// absent from the environment is an error rather than an empty string,
// and $$ escapes to a literal dollar.
func ExpandEnvStrict(s string) (string, error) {
	masked := strings.ReplaceAll(s, "$$", literalDollar)

	if missing := missingEnvKeys(masked); len(missing) > 0 {
		return "", newMissingEnvError(missing)
	}

	expanded := os.ExpandEnv(masked)
	return strings.ReplaceAll(expanded, literalDollar, "$"), nil
}

// missingEnvKeys returns the sorted set of ${VAR} references in s that
// the environment does not define.
func missingEnvKeys(s string) []string {
	missing := map[string]struct{}{}
	for _, ref := range envRefPattern.FindAllStringSubmatch(s, -1) {
		if _, ok := os.LookupEnv(ref[1]); !ok {
			missing[ref[1]] = struct{}{}
		}
	}
	return slices.Sorted(maps.Keys(missing))
}
