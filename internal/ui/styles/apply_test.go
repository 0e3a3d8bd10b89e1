package styles

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func resetTheme(t *testing.T) {
	t.Helper()
	t.Cleanup(func() { require.NoError(t, ApplyTheme(ThemeConfig{})) })
}

func TestApplyTheme_Default(t *testing.T) {
	resetTheme(t)
	require.NoError(t, ApplyTheme(ThemeConfig{}))
	require.Equal(t, DefaultPreset.Colors[TokenTextPrimary], TextPrimaryColor.Dark)
	require.Equal(t, DefaultPreset.Colors[TokenHeading], HeadingColor.Dark)
}

func TestApplyTheme_Preset(t *testing.T) {
	resetTheme(t)
	require.NoError(t, ApplyTheme(ThemeConfig{Preset: "nord"}))
	require.Equal(t, NordPreset.Colors[TokenAccent], AccentColor.Dark)
	require.Equal(t, NordPreset.Colors[TokenCode], CodeColor.Dark)
}

func TestApplyTheme_PresetWithOverride(t *testing.T) {
	resetTheme(t)
	Presets["test"] = Preset{
		Name: "test",
		Colors: map[ColorToken]string{
			TokenTextPrimary:   "#FF0000",
			TokenTextSecondary: "#0000FF",
		},
	}
	defer delete(Presets, "test")

	err := ApplyTheme(ThemeConfig{
		Preset: "test",
		Colors: map[string]string{"text.primary": "#00FF00"},
	})
	require.NoError(t, err)
	require.Equal(t, "#00FF00", TextPrimaryColor.Dark)
	require.Equal(t, "#0000FF", TextSecondaryColor.Dark)
}

func TestApplyTheme_RebuildsDocumentStyles(t *testing.T) {
	resetTheme(t)
	require.NoError(t, ApplyTheme(ThemeConfig{Colors: map[string]string{
		"accent":           "#123456",
		"document.heading": "#ABCDEF",
	}}))

	require.Equal(t, AccentColor, LinkStyle.GetForeground())
	require.Equal(t, HeadingColor, Heading(2).GetForeground())
}

func TestApplyTheme_Errors(t *testing.T) {
	resetTheme(t)
	tests := []struct {
		name string
		cfg  ThemeConfig
		want string
	}{
		{"preset", ThemeConfig{Preset: "nonexistent"}, "unknown theme preset"},
		{"token", ThemeConfig{Colors: map[string]string{"invalid.token": "#FF0000"}}, "unknown color token"},
		{"hex", ThemeConfig{Colors: map[string]string{"text.primary": "red"}}, "invalid hex color"},
		{"mode", ThemeConfig{Mode: "sepia"}, "invalid theme mode"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ApplyTheme(tt.cfg)
			require.ErrorContains(t, err, tt.want)
		})
	}
}

func TestIsValidHexColor(t *testing.T) {
	for s, want := range map[string]bool{
		"#FFF":    true,
		"#a1b2c3": true,
		"FFF":     false,
		"#FFFF":   false,
		"#GGGGGG": false,
	} {
		require.Equal(t, want, isValidHexColor(s), s)
	}
}
