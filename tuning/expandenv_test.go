package tuning

import (
	"errors"
	"strings"
	"testing"

	goerr "github.com/agilira/go-errors"
)

func TestExpandEnvStrict(t *testing.T) {
	t.Setenv("FETCH_PROXY", "http://proxy:8080")
	t.Setenv("FETCH_TOKEN", "tok-123")

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"braced reference", "${FETCH_PROXY}/health", "http://proxy:8080/health"},
		{"bare reference", "$FETCH_TOKEN", "tok-123"},
		{"no references", "plain text", "plain text"},
		{"escaped dollar", "cost: $$5", "cost: $5"},
		{"escape then reference", "$$$FETCH_TOKEN", "$tok-123"},
		{"bare unset expands empty", "ua=$TUNING_UNSET_BARE", "ua="},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := ExpandEnvStrict(tt.input)
			if err != nil {
				t.Fatalf("ExpandEnvStrict(%q) error = %v", tt.input, err)
			}
			if out != tt.want {
				t.Errorf("ExpandEnvStrict(%q) = %q, want %q", tt.input, out, tt.want)
			}
		})
	}
}

func TestExpandEnvStrict_MissingVar(t *testing.T) {
	t.Setenv("FETCH_PROXY", "http://proxy:8080")

	_, err := ExpandEnvStrict("proxy=${FETCH_PROXY} ua=${FETCH_USER_AGENT_UNSET}")
	if err == nil {
		t.Fatal("ExpandEnvStrict() should fail on an unset ${VAR}")
	}
	if !errors.Is(err, ErrMissingEnv) {
		t.Errorf("error = %v, want ErrMissingEnv identity", err)
	}
	if !goerr.HasCode(err, errCodeInvalidConfig) {
		t.Errorf("error lacks code %s", errCodeInvalidConfig)
	}
	if !strings.Contains(err.Error(), "FETCH_USER_AGENT_UNSET") {
		t.Errorf("error should name the unset variable, got: %v", err)
	}
}

func TestExpandEnvStrict_ReportsAllMissingSorted(t *testing.T) {
	_, err := ExpandEnvStrict("${ZED_UNSET} ${ALPHA_UNSET} ${ZED_UNSET}")
	if err == nil {
		t.Fatal("ExpandEnvStrict() should fail on unset ${VAR}s")
	}
	if !strings.Contains(err.Error(), "ALPHA_UNSET, ZED_UNSET") {
		t.Errorf("error should list unset variables sorted and deduped, got: %v", err)
	}
}
