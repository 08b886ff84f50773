package onboard

import "github.com/vimgreet/vimgreet/internal/config"

// Package selection lives in a matrix parallel to cfg.Updates. Required
// packages are pinned selected; everything else toggles freely.

func (m *Model) navigateUpdateDown() {
	cat := m.pkgCatCursor
	if m.pkgCursor < 0 {
		// On the category header: descend into it, or skip an empty one.
		if cat < len(m.cfg.Updates) && len(m.cfg.Updates[cat].Packages) > 0 {
			m.pkgCursor = 0
		} else if cat < len(m.cfg.Updates)-1 {
			m.pkgCatCursor++
		}
		return
	}
	if cat < len(m.cfg.Updates) && m.pkgCursor < len(m.cfg.Updates[cat].Packages)-1 {
		m.pkgCursor++
	} else if cat < len(m.cfg.Updates)-1 {
		m.pkgCatCursor++
		m.pkgCursor = -1
	}
}

func (m *Model) navigateUpdateUp() {
	if m.pkgCursor < 0 {
		if m.pkgCatCursor > 0 {
			m.pkgCatCursor--
			if n := len(m.cfg.Updates[m.pkgCatCursor].Packages); n > 0 {
				m.pkgCursor = n - 1
			}
		}
		return
	}
	if m.pkgCursor > 0 {
		m.pkgCursor--
	} else {
		m.pkgCursor = -1
	}
}

// toggleUpdateItem flips the focused package, or the whole category when the
// cursor sits on its header. Required packages stay selected either way.
func (m *Model) toggleUpdateItem() {
	cat := m.pkgCatCursor
	if cat >= len(m.cfg.Updates) {
		return
	}

	if m.pkgCursor < 0 {
		all := true
		for _, sel := range m.pkgSelected[cat] {
			if !sel {
				all = false
				break
			}
		}
		for i := range m.pkgSelected[cat] {
			if m.cfg.Updates[cat].Packages[i].Required {
				m.pkgSelected[cat][i] = true
			} else {
				m.pkgSelected[cat][i] = !all
			}
		}
		return
	}

	if m.pkgCursor >= len(m.pkgSelected[cat]) {
		return
	}
	if m.cfg.Updates[cat].Packages[m.pkgCursor].Required {
		return
	}
	m.pkgSelected[cat][m.pkgCursor] = !m.pkgSelected[cat][m.pkgCursor]
}

func (m Model) isCategoryFullySelected(cat int) bool {
	if cat >= len(m.pkgSelected) || len(m.pkgSelected[cat]) == 0 {
		return false
	}
	for _, sel := range m.pkgSelected[cat] {
		if !sel {
			return false
		}
	}
	return true
}

func (m Model) isCategoryAnySelected(cat int) bool {
	if cat >= len(m.pkgSelected) {
		return false
	}
	for _, sel := range m.pkgSelected[cat] {
		if sel {
			return true
		}
	}
	return false
}

func (m Model) isCategoryPartiallySelected(cat int) bool {
	return m.isCategoryAnySelected(cat) && !m.isCategoryFullySelected(cat)
}

func (m Model) anyPackageSelected() bool {
	for cat := range m.pkgSelected {
		if m.isCategoryAnySelected(cat) {
			return true
		}
	}
	return false
}

// commandsNeedSudo reports whether any selected package carries a sudo
// command.
func (m Model) commandsNeedSudo() bool {
	for ci, cat := range m.cfg.Updates {
		for pi, pkg := range cat.Packages {
			if !m.pkgIsSelected(ci, pi) {
				continue
			}
			for _, cmd := range pkg.Commands {
				if cmd.Sudo {
					return true
				}
			}
		}
	}
	return false
}

// selectedCommands flattens the commands of every selected package, in
// category order.
func (m Model) selectedCommands() []config.CommandConfig {
	var commands []config.CommandConfig
	for ci, cat := range m.cfg.Updates {
		for pi, pkg := range cat.Packages {
			if m.pkgIsSelected(ci, pi) {
				commands = append(commands, pkg.Commands...)
			}
		}
	}
	return commands
}

func (m Model) pkgIsSelected(cat, pkg int) bool {
	return cat < len(m.pkgSelected) && pkg < len(m.pkgSelected[cat]) && m.pkgSelected[cat][pkg]
}
