package app

import (
	"context"
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lineserve/lineserve/internal/testkit"
	"github.com/lineserve/lineserve/pkg/client"
)

func parsedFlags(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterFlags(flags)
	require.NoError(t, flags.Parse(args))
	return flags
}

func TestRun_ServesUntilCancelled(t *testing.T) {
	searchFile := testkit.WriteSearchFile(t, "alpha", "beta")
	port := testkit.MustGetFreePort(t)

	flags := parsedFlags(t,
		"--host", "127.0.0.1",
		"--port", fmt.Sprintf("%d", port),
		"--search-file", searchFile,
		"--log-level", "error",
	)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Run(ctx, flags, "test") }()

	c := client.New(client.Options{
		Address: fmt.Sprintf("127.0.0.1:%d", port),
		Timeout: 2 * time.Second,
	})

	// The listener comes up asynchronously; poll until the first query lands.
	var found bool
	var err error
	require.Eventually(t, func() bool {
		found, err = c.Exists(ctx, "alpha")
		return err == nil
	}, 5*time.Second, 50*time.Millisecond)
	assert.True(t, found)

	found, err = c.Exists(ctx, "gamma")
	require.NoError(t, err)
	assert.False(t, found)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err, "cancellation is a clean shutdown")
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancellation")
	}
}

func TestRun_BindFailure(t *testing.T) {
	searchFile := testkit.WriteSearchFile(t, "alpha")

	// Occupy the port so Run cannot bind it.
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = ln.Close() })
	_, portStr, err := net.SplitHostPort(ln.Addr().String())
	require.NoError(t, err)

	flags := parsedFlags(t,
		"--host", "127.0.0.1",
		"--port", portStr,
		"--search-file", searchFile,
		"--log-level", "error",
	)

	err = Run(context.Background(), flags, "test")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to bind")
}

func TestRun_MissingSearchFileSetting(t *testing.T) {
	flags := parsedFlags(t, "--host", "127.0.0.1", "--port", "0")

	err := Run(context.Background(), flags, "test")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "search_file")
}
