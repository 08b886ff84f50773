package system

// Canned data for demo mode, where nothing is read from the host.

func DemoSessions() []Session {
	return []Session{
		{Name: "GNOME", Slug: "gnome", Exec: "gnome-session", Type: SessionWayland},
		{Name: "Hyprland", Slug: "hyprland", Exec: "Hyprland", Type: SessionWayland},
		{Name: "Sway", Slug: "sway", Exec: "sway", Type: SessionWayland},
		{Name: "i3", Slug: "i3", Exec: "i3", Type: SessionX11},
	}
}

func DemoUsers() []User {
	return []User{
		{Username: "alice", DisplayName: "Alice Example"},
		{Username: "bob", DisplayName: "Bob Example"},
	}
}
