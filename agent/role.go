package agent

import "github.com/fatih/color"

// Role identifies one node of the research graph.
type Role int

const (
	RolePlanner Role = iota
	RoleSelector
	RoleSerper
	RoleReporter
	RoleReviewer
	RoleRouter
	RoleFinalReport
	RoleEndNode
)

var roleNames = [...]string{
	RolePlanner:     "planner",
	RoleSelector:    "selector",
	RoleSerper:      "serper",
	RoleReporter:    "reporter",
	RoleReviewer:    "reviewer",
	RoleRouter:      "router",
	RoleFinalReport: "final_report",
	RoleEndNode:     "end_chain",
}

var roleKeys = [...]Key{
	RolePlanner:     KeyPlanner,
	RoleSelector:    KeySelector,
	RoleSerper:      KeySerper,
	RoleReporter:    KeyReporter,
	RoleReviewer:    KeyReviewer,
	RoleRouter:      KeyRouter,
	RoleFinalReport: KeyFinalReports,
	RoleEndNode:     KeyEndChain,
}

var roleColors = [...]color.Attribute{
	RolePlanner:     color.FgCyan,
	RoleSelector:    color.FgGreen,
	RoleSerper:      color.FgWhite,
	RoleReporter:    color.FgYellow,
	RoleReviewer:    color.FgMagenta,
	RoleRouter:      color.FgBlue,
	RoleFinalReport: color.FgBlue,
	RoleEndNode:     color.FgHiBlack,
}

// RouterTargets are the roles the Router may hand control to.
var RouterTargets = []Role{RolePlanner, RoleSelector, RoleReporter, RoleReviewer, RoleFinalReport}

func (r Role) valid() bool {
	return r >= RolePlanner && r <= RoleEndNode
}

func (r Role) String() string {
	if !r.valid() {
		return "unknown"
	}
	return roleNames[r]
}

// Key returns the state channel the role appends to.
func (r Role) Key() Key {
	if !r.valid() {
		return ""
	}
	return roleKeys[r]
}

// Color returns a printer for console output attributed to the role.
func (r Role) Color() *color.Color {
	if !r.valid() {
		return color.New(color.Reset)
	}
	return color.New(roleColors[r])
}

// ParseRole maps a role name to its Role. Unknown names yield a *RoutingError.
func ParseRole(name string) (Role, error) {
	for i, n := range roleNames {
		if n == name {
			return Role(i), nil
		}
	}
	return 0, &RoutingError{Value: name}
}

// ParseRouterTarget is ParseRole restricted to RouterTargets.
func ParseRouterTarget(name string) (Role, error) {
	role, err := ParseRole(name)
	if err != nil {
		return 0, err
	}
	switch role {
	case RolePlanner, RoleSelector, RoleReporter, RoleReviewer, RoleFinalReport:
		return role, nil
	case RoleSerper, RoleRouter, RoleEndNode:
		return 0, &RoutingError{Value: name}
	}
	return 0, &RoutingError{Value: name}
}
