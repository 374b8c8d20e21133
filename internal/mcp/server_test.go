package mcp

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/felixgeelhaar/mcp-go/middleware"
	"github.com/felixgeelhaar/mcp-go/testutil"
	"github.com/felixgeelhaar/slotwise/adapter/cli/clitest"
	"github.com/felixgeelhaar/slotwise/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewServer_RequiresApp(t *testing.T) {
	_, err := NewServer("1.0.0", nil, nil)
	assert.Error(t, err)
}

func TestNewServer_RegistersTools(t *testing.T) {
	_, container := clitest.NewApp(t)
	userID, err := container.UserID()
	require.NoError(t, err)

	srv, err := NewServer("", NewCLIApp(container, userID), nil)
	require.NoError(t, err)

	tc := testutil.NewTestClient(t, srv)
	defer tc.Close()

	tools, err := tc.ListTools()
	require.NoError(t, err)
	assert.GreaterOrEqual(t, len(tools), 7)
}

func TestMiddleware_AuthToken(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	open := Middleware(&config.Config{}, logger)
	assert.Contains(t, buf.String(), "auth token not set")

	secured := Middleware(&config.Config{MCPAuthToken: "secret"}, logger)
	assert.Len(t, secured, len(open)+1)
}

func TestFieldsToArgs(t *testing.T) {
	args := fieldsToArgs([]middleware.Field{{Key: "tool", Value: "slots.find"}, {Key: "user", Value: "u1"}})
	require.Len(t, args, 4)
	assert.Equal(t, "tool", args[0])
	assert.Equal(t, "user", args[2])
}
