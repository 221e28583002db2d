package install

// ShortcutDirs are the directories shortcuts are created in.
type ShortcutDirs struct {
	StartMenu string
	Desktop   string
}

func (d ShortcutDirs) For(loc Location) string {
	switch loc {
	case StartMenu:
		return d.StartMenu
	case Desktop:
		return d.Desktop
	default:
		return ""
	}
}
