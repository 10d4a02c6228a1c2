package display

import (
	_ "embed"
	"strings"
)

//go:embed banner.txt
var bannerRaw string

// bannerWidth is the column count the banner is centred in.
const bannerWidth = 80

// RenderBanner returns the banner art centred in an 80-column line. To
// change the banner just replace banner.txt.
func RenderBanner() string {
	lines := strings.Split(strings.TrimRight(bannerRaw, "\n"), "\n")

	maxW := 0
	for _, l := range lines {
		if len(l) > maxW {
			maxW = len(l)
		}
	}
	pad := 0
	if bannerWidth > maxW {
		pad = (bannerWidth - maxW) / 2
	}

	var b strings.Builder
	for _, l := range lines {
		b.WriteString(strings.Repeat(" ", pad))
		b.WriteString(BannerStyle.Render(l))
		b.WriteByte('\n')
	}
	return b.String()
}
