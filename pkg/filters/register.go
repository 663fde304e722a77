package filters

import (
	"github.com/ecmwf/anemoi-transform-sub000/pkg/registry"
)

// Register contributes the builtin filter catalog to a registry. It is the
// provider the composition root hands to registry.New.
func Register(r *registry.Registry) error {
	builtins := []struct {
		name    string
		factory registry.Factory
	}{
		{"clip", NewClip},
		{"convert", NewConvert},
		{"cos_sin_mean_wave_direction", NewCosSinWaveDirection},
		{"ddff_2_uv", NewWindFromSpeedDirection},
		{"lnsp_to_sp", NewLnspToSp},
		{"noop", NewNoOp},
		{"orog_to_z", NewOrography},
		{"q_2_r", NewHumidityConversion},
		{"r_2_q", NewHumidityFromRelative},
		{"remove_metadata", NewRemoveMetadata},
		{"rename", NewRename},
		{"rescale", NewRescale},
		{"script", NewScript},
		{"sp_to_lnsp", NewSpFromLnsp},
		{"sum", NewSum},
		{"uv_2_ddff", NewWindComponents},
		{"where", NewWhere},
		{"z_to_orog", NewOrographyFromGeopotential},
	}
	for _, b := range builtins {
		if err := r.Register(b.name, b.factory); err != nil {
			return err
		}
	}
	return nil
}
