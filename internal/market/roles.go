package market

// Screen identifies a navigable view of the application.
type Screen string

const (
	ScreenPOS       Screen = "pos"
	ScreenDashboard Screen = "dashboard"
	ScreenInventory Screen = "inventory"
	ScreenHistory   Screen = "history"
	ScreenAI        Screen = "ai"
)

// screensByRole keeps access data-driven: adding a role or screen is a
// one-line edit here. Slices are in sidebar order.
var screensByRole = map[UserRole][]Screen{
	RoleCashier:   {ScreenPOS},
	RoleManager:   {ScreenPOS, ScreenDashboard, ScreenInventory, ScreenHistory},
	RoleOwner:     {ScreenPOS, ScreenDashboard, ScreenInventory, ScreenHistory, ScreenAI},
	RoleDeveloper: {ScreenPOS, ScreenDashboard, ScreenInventory, ScreenHistory, ScreenAI},
}

// AllowedScreens returns the ordered screens for role.
func AllowedScreens(role UserRole) []Screen {
	src := screensByRole[role]
	out := make([]Screen, len(src))
	copy(out, src)
	return out
}

func CanAccess(role UserRole, screen Screen) bool {
	for _, s := range screensByRole[role] {
		if s == screen {
			return true
		}
	}
	return false
}

// DefaultScreen is where the UI lands (or redirects to) for a role.
func DefaultScreen(role UserRole) Screen {
	if s := screensByRole[role]; len(s) > 0 {
		return s[0]
	}
	return ScreenPOS
}
