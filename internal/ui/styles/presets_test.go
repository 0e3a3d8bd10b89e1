package styles

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPresets_DefineEveryToken(t *testing.T) {
	for name, preset := range Presets {
		t.Run(name, func(t *testing.T) {
			require.Equal(t, name, preset.Name)
			for _, token := range AllTokens() {
				c, ok := preset.Colors[token]
				require.True(t, ok, "missing %s", token)
				require.True(t, isValidHexColor(c), "%s: %s", token, c)
			}
			require.Len(t, preset.Colors, len(AllTokens()))
		})
	}
}

func TestDefaultPreset_MatchesPackageColors(t *testing.T) {
	resetTheme(t)
	require.NoError(t, ApplyTheme(ThemeConfig{}))

	require.Equal(t, DefaultPreset.Colors[TokenListMarker], ListMarkerColor.Dark)
	require.Equal(t, DefaultPreset.Colors[TokenAttachment], AttachmentColor.Dark)
	require.Equal(t, DefaultPreset.Colors[TokenOverlayBorder], OverlayBorderColor.Dark)
}
