package web

// Tab is one entry of the posyandu management tab strip.
type Tab struct {
	Label  string `json:"label"`
	Href   string `json:"href"`
	Active bool   `json:"active"`
}

// TabBasePath is the prefix every management tab lives under.
const TabBasePath = "/dashboard/manajemen-posyandu"

var managementTabs = []Tab{
	{Label: "Wilayah Kerja Puskesmas", Href: TabBasePath + "/wilayah-kerja"},
	{Label: "Manajemen Posyandu", Href: TabBasePath + "/data-posyandu"},
	{Label: "GIS Sebaran Posyandu", Href: TabBasePath + "/gis"},
	{Label: "Grafik Statistik Posyandu", Href: TabBasePath + "/statistik-posyandu"},
}

// Tabs returns the tab strip for path. A tab is active only when its href
// equals path exactly, so nested pages such as the edit form have none.
func Tabs(path string) []Tab {
	out := make([]Tab, len(managementTabs))
	for i, t := range managementTabs {
		t.Active = t.Href == path
		out[i] = t
	}
	return out
}

// FindTab returns the tab registered for slug, e.g. "gis".
func FindTab(slug string) (Tab, bool) {
	for _, t := range managementTabs {
		if t.Href == TabBasePath+"/"+slug {
			return t, true
		}
	}
	return Tab{}, false
}

// Menu names a navbar dropdown.
type Menu string

const (
	MenuNotifications Menu = "notifications"
	MenuProfile       Menu = "profile"
)

// MenuState holds which navbar dropdowns are open. The two menus toggle
// independently.
type MenuState struct {
	NotificationsOpen bool `json:"notifications_open"`
	ProfileOpen       bool `json:"profile_open"`
}

// Toggle flips menu open or closed.
func (m *MenuState) Toggle(menu Menu) {
	switch menu {
	case MenuNotifications:
		m.NotificationsOpen = !m.NotificationsOpen
	case MenuProfile:
		m.ProfileOpen = !m.ProfileOpen
	}
}

// CloseOutside handles a click on target; every open menu other than target
// closes. An empty target is a click outside both menus.
func (m *MenuState) CloseOutside(target Menu) {
	if target != MenuNotifications {
		m.NotificationsOpen = false
	}
	if target != MenuProfile {
		m.ProfileOpen = false
	}
}

// Link is a labelled navigation target.
type Link struct {
	Label string `json:"label"`
	Href  string `json:"href"`
}

// Navbar is the top bar of every dashboard page.
type Navbar struct {
	Title         string    `json:"title"`
	Badge         int       `json:"badge"`
	Notifications []string  `json:"notifications"`
	AllNotices    string    `json:"all_notices"`
	UserName      string    `json:"user_name"`
	ProfileLinks  []Link    `json:"profile_links"`
	Menus         MenuState `json:"menus"`
}

// DefaultNavbar returns the static dashboard navbar with menus closed.
func DefaultNavbar() Navbar {
	return Navbar{
		Title: "Dashboard",
		Badge: 3,
		Notifications: []string{
			"💉 Jadwal imunisasi besok pukul 08:00",
			"🔔 Kegiatan Posyandu minggu depan",
		},
		AllNotices: "Lihat semua notifikasi",
		UserName:   "Administrator",
		ProfileLinks: []Link{
			{Label: "Profil", Href: "/dashboard/profile"},
			{Label: "Sign Out", Href: "/"},
		},
	}
}

// navbarFor applies the ?menu= query toggle to the default navbar. The page
// is rendered fresh on every request, so a click elsewhere closes the rest.
func navbarFor(base Navbar, menu string) Navbar {
	nav := base
	nav.Notifications = append([]string(nil), base.Notifications...)
	nav.ProfileLinks = append([]Link(nil), base.ProfileLinks...)
	target := Menu(menu)
	nav.Menus.CloseOutside(target)
	if target == MenuNotifications || target == MenuProfile {
		nav.Menus.Toggle(target)
	}
	return nav
}
