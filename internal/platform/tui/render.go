package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/dunesim/internal/core"
	"github.com/vovakirdan/dunesim/internal/scenario/formats"
	"github.com/vovakirdan/dunesim/internal/sim"
)

// colorStyles maps core.Color to lipgloss styles.
var colorStyles = map[core.Color]lipgloss.Style{
	core.ColorDefault:       lipgloss.NewStyle(),
	core.ColorRed:           lipgloss.NewStyle().Foreground(lipgloss.Color("1")),
	core.ColorGreen:         lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
	core.ColorYellow:        lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
	core.ColorBlue:          lipgloss.NewStyle().Foreground(lipgloss.Color("4")),
	core.ColorMagenta:       lipgloss.NewStyle().Foreground(lipgloss.Color("5")),
	core.ColorCyan:          lipgloss.NewStyle().Foreground(lipgloss.Color("6")),
	core.ColorWhite:         lipgloss.NewStyle().Foreground(lipgloss.Color("7")),
	core.ColorBrightRed:     lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
	core.ColorBrightGreen:   lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
	core.ColorBrightYellow:  lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
	core.ColorBrightBlue:    lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true),
	core.ColorBrightMagenta: lipgloss.NewStyle().Foreground(lipgloss.Color("13")).Bold(true),
	core.ColorBrightCyan:    lipgloss.NewStyle().Foreground(lipgloss.Color("14")).Bold(true),
	core.ColorBrightWhite:   lipgloss.NewStyle().Foreground(lipgloss.Color("15")),
	core.ColorOrange:        lipgloss.NewStyle().Foreground(lipgloss.Color("208")),
	core.ColorGray:          lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
}

// terrainColors tint the terrain glyphs.
var terrainColors = map[sim.Terrain]core.Color{
	sim.TerrainSand:         core.ColorYellow,
	sim.TerrainDunes:        core.ColorOrange,
	sim.TerrainRock:         core.ColorGray,
	sim.TerrainSlab:         core.ColorWhite,
	sim.TerrainMountain:     core.ColorWhite,
	sim.TerrainSpice:        core.ColorRed,
	sim.TerrainThickSpice:   core.ColorRed,
	sim.TerrainSpiceBloom:   core.ColorMagenta,
	sim.TerrainSpecialBloom: core.ColorMagenta,
}

// itemGlyphs are the characters objects are drawn with. Structures use
// capitals and fill their footprint.
var itemGlyphs = map[sim.ItemID]rune{
	sim.ItemConstructionYard: 'C',
	sim.ItemWindTrap:         'W',
	sim.ItemRefinery:         'R',
	sim.ItemSilo:             'O',
	sim.ItemBarracks:         'B',
	sim.ItemLightFactory:     'L',
	sim.ItemHeavyFactory:     'H',
	sim.ItemHighTechFactory:  'X',
	sim.ItemRadar:            'Q',
	sim.ItemGunTurret:        'T',
	sim.ItemRocketTurret:     'Y',
	sim.ItemWall:             '█',
	sim.ItemSlab1:            '▫',
	sim.ItemPalace:           'P',
	sim.ItemSoldier:          'i',
	sim.ItemTrooper:          'I',
	sim.ItemTrike:            't',
	sim.ItemQuad:             'q',
	sim.ItemTank:             'k',
	sim.ItemSiegeTank:        'K',
	sim.ItemLauncher:         'l',
	sim.ItemDevastator:       'D',
	sim.ItemDeviator:         'v',
	sim.ItemHarvester:        'h',
	sim.ItemMCV:              'm',
	sim.ItemCarryall:         'c',
	sim.ItemOrnithopter:      'o',
	sim.ItemSandworm:         'S',
}

// ItemGlyph returns the character an item is drawn with.
func ItemGlyph(item sim.ItemID) rune {
	if r, ok := itemGlyphs[item]; ok {
		return r
	}
	return '?'
}

// AllPlayers is the viewer that sees the whole map.
const AllPlayers = sim.NoPlayer

// DrawWorld paints the part of w that starts at map tile origin onto the
// screen area r. With a valid viewer, unexplored tiles stay dark and only
// objects the viewer currently sees are drawn.
func DrawWorld(s *core.Screen, r core.Rect, w *sim.World, origin core.Coord, viewer sim.PlayerID) {
	m := w.Map()
	fog := viewer.Valid()

	for y := 0; y < r.H; y++ {
		for x := 0; x < r.W; x++ {
			c := origin.Add(core.C(x, y))
			sx, sy := r.X+x, r.Y+y
			if !m.Contains(c) {
				s.SetCell(sx, sy, ' ', core.ColorDefault)
				continue
			}
			t := m.Tile(c)
			if fog && !t.IsExplored(viewer) {
				s.SetCell(sx, sy, '░', core.ColorGray)
				continue
			}
			s.SetCell(sx, sy, formats.TerrainRune(t.Terrain), terrainColors[t.Terrain])
		}
	}

	view := core.NewRect(origin.X, origin.Y, r.W, r.H)
	// Structures first so units standing in a doorway stay visible
	for _, pass := range []bool{true, false} {
		for _, o := range w.Objects() {
			if o.IsStructure() != pass || o.InTransport() {
				continue
			}
			if fog && o.Owner != viewer && !o.IsVisibleTo(viewer) {
				continue
			}
			glyph, color := ItemGlyph(o.Item), ownerColor(o.Owner)
			for _, c := range o.Footprint().Cells() {
				if view.Contains(c) {
					s.SetCell(r.X+c.X-origin.X, r.Y+c.Y-origin.Y, glyph, color)
				}
			}
		}
	}

	for _, b := range w.Bullets() {
		c := b.Pos.Tile()
		if view.Contains(c) {
			s.SetCell(r.X+c.X-origin.X, r.Y+c.Y-origin.Y, '•', core.ColorBrightWhite)
		}
	}
}

func ownerColor(p sim.PlayerID) core.Color {
	if !p.Valid() {
		return core.ColorGray
	}
	return core.HouseColor(int(p))
}

// RenderScreen converts a Screen buffer to a styled string for display.
// Groups adjacent cells with the same color to minimize ANSI escape sequences.
func RenderScreen(s *core.Screen) string {
	var sb strings.Builder
	sb.Grow(s.Width()*s.Height()*2 + s.Height())

	for y := range s.Height() {
		if y > 0 {
			sb.WriteRune('\n')
		}

		x := 0
		for x < s.Width() {
			startColor := s.GetCell(x, y).Color

			var run strings.Builder
			for x < s.Width() {
				cell := s.GetCell(x, y)
				if cell.Color != startColor {
					break
				}
				run.WriteRune(cell.Rune)
				x++
			}

			style, ok := colorStyles[startColor]
			if !ok {
				style = colorStyles[core.ColorDefault]
			}
			sb.WriteString(style.Render(run.String()))
		}
	}
	return sb.String()
}
