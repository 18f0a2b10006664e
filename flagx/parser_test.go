package flagx

import (
	"testing"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type invalidateRequest struct {
	Pattern string        `flag:"pattern,p" usage:"key pattern" required:"true" json:"pattern"`
	Limit   int           `flag:"limit" default:"100" json:"limit"`
	DryRun  bool          `flag:"dry-run" default:"true"`
	TTL     time.Duration `flag:"ttl" default:"5m"`
	Tags    []string      `flag:"tag"`
	Ignored string
}

func (r *invalidateRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Pattern, validation.Required),
		validation.Field(&r.Limit, validation.Min(1)),
	)
}

func newCmd(t *testing.T, req *invalidateRequest) *cobra.Command {
	t.Helper()
	cmd := &cobra.Command{Use: "invalidate"}
	require.NoError(t, BindFlags(cmd, req))
	return cmd
}

func TestBindFlags_RegistersDefaults(t *testing.T) {
	var req invalidateRequest
	cmd := newCmd(t, &req)

	f := cmd.Flags().Lookup("pattern")
	require.NotNil(t, f)
	assert.Equal(t, "p", f.Shorthand)
	assert.Equal(t, "key pattern", f.Usage)
	assert.Equal(t, []string{"true"}, f.Annotations[cobra.BashCompOneRequiredFlag])

	assert.Equal(t, "100", cmd.Flags().Lookup("limit").DefValue)
	assert.Equal(t, "5m0s", cmd.Flags().Lookup("ttl").DefValue)
	assert.Nil(t, cmd.Flags().Lookup("Ignored"))
}

func TestParse_ReadsValues(t *testing.T) {
	var req invalidateRequest
	cmd := newCmd(t, &req)
	require.NoError(t, cmd.Flags().Parse([]string{"-p", "user:*", "--limit", "5", "--dry-run=false", "--ttl", "30s", "--tag", "a,b"}))

	require.NoError(t, Parse(cmd, &req))
	assert.Equal(t, "user:*", req.Pattern)
	assert.Equal(t, 5, req.Limit)
	assert.False(t, req.DryRun)
	assert.Equal(t, 30*time.Second, req.TTL)
	assert.Equal(t, []string{"a", "b"}, req.Tags)
}

func TestParse_Validates(t *testing.T) {
	var req invalidateRequest
	cmd := newCmd(t, &req)
	require.NoError(t, cmd.Flags().Parse([]string{"--limit", "0"}))

	err := Parse(cmd, &req)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "limit")
	assert.Contains(t, err.Error(), "pattern")
}

func TestBindFlags_RejectsBadTargets(t *testing.T) {
	cmd := &cobra.Command{Use: "x"}
	assert.Error(t, BindFlags(cmd, invalidateRequest{}))

	var s string
	assert.Error(t, ParseFlags(cmd, &s))

	type badDefault struct {
		TTL time.Duration `flag:"ttl" default:"soon"`
	}
	assert.Error(t, BindFlags(cmd, &badDefault{}))

	type unsupported struct {
		Rate float64 `flag:"rate"`
	}
	assert.Error(t, BindFlags(&cobra.Command{Use: "y"}, &unsupported{}))
}
