package core

// Color represents a foreground color for a screen cell.
type Color uint8

// Predefined colors.
const (
	ColorDefault Color = iota
	ColorRed
	ColorGreen
	ColorYellow
	ColorBlue
	ColorMagenta
	ColorCyan
	ColorWhite
	ColorBrightRed
	ColorBrightGreen
	ColorBrightYellow
	ColorBrightBlue
	ColorBrightMagenta
	ColorBrightCyan
	ColorBrightWhite
	ColorOrange
	ColorGray
)

var houseColors = [...]Color{
	ColorBrightBlue,    // Atreides
	ColorBrightRed,     // Harkonnen
	ColorBrightGreen,   // Ordos
	ColorBrightMagenta, // Fremen
	ColorOrange,        // Sardaukar
	ColorBrightCyan,    // Mercenary
	ColorWhite,
	ColorYellow,
}

// HouseColor returns the display color for a player slot.
func HouseColor(player int) Color {
	if player < 0 || player >= len(houseColors) {
		return ColorGray
	}
	return houseColors[player]
}
