package agent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRoleRoundTrip(t *testing.T) {
	for r := RolePlanner; r <= RoleEndNode; r++ {
		parsed, err := ParseRole(r.String())
		require.NoError(t, err)
		assert.Equal(t, r, parsed)
		assert.NotEmpty(t, r.Key())
	}
}

func TestParseRoleUnknown(t *testing.T) {
	_, err := ParseRole("unknown_role")

	var routingErr *RoutingError
	require.ErrorAs(t, err, &routingErr)
	assert.Equal(t, "unknown_role", routingErr.Value)
}

func TestParseRouterTarget(t *testing.T) {
	for _, name := range []string{"planner", "selector", "reporter", "reviewer", "final_report"} {
		_, err := ParseRouterTarget(name)
		assert.NoError(t, err, name)
	}
	for _, name := range []string{"router", "serper", "end_chain", "", "Planner"} {
		_, err := ParseRouterTarget(name)
		var routingErr *RoutingError
		assert.ErrorAs(t, err, &routingErr, name)
	}
}

func TestRoleKeys(t *testing.T) {
	assert.Equal(t, KeyFinalReports, RoleFinalReport.Key())
	assert.Equal(t, KeySerper, RoleSerper.Key())
	assert.Equal(t, Key(""), Role(99).Key())
	assert.Equal(t, "unknown", Role(-1).String())
}
