// Package config handles exporter configuration loading and management.
package config

// Config holds all exporter settings.
type Config struct {
	Export    ExportConfig    `yaml:"export" toml:"export"`
	Animation AnimationConfig `yaml:"animation" toml:"animation"`
	Logging   LoggingConfig   `yaml:"logging" toml:"logging"`
}

// ExportConfig holds document output settings.
type ExportConfig struct {
	OutputDir   string `yaml:"output_dir" toml:"output_dir"`     // Directory receiving .mesh/.armature files
	TextureDir  string `yaml:"texture_dir" toml:"texture_dir"`   // Engine-side texture directory
	StubTexture string `yaml:"stub_texture" toml:"stub_texture"` // Texture for faces without an image
}

// AnimationConfig holds pose-library settings.
type AnimationConfig struct {
	Target      string `yaml:"target" toml:"target"`             // Animation filter for the animate command
	FrameStep   int    `yaml:"frame_step" toml:"frame_step"`     // Timeline frames between keyframes
	NamePattern string `yaml:"name_pattern" toml:"name_pattern"` // Animation filter applied on export
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level" toml:"level"`
	LogFile string `yaml:"log_file" toml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Export: ExportConfig{
			OutputDir:   ".",
			TextureDir:  "gfx/textures",
			StubTexture: "stub.png",
		},
		Animation: AnimationConfig{
			Target:      "",
			FrameStep:   5,
			NamePattern: "",
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}
