package rest

import (
	"github.com/ibukiaudio/ibuki/internal/filterchain"
	"github.com/ibukiaudio/ibuki/internal/trackcodec"
)

// trackDTO is the JSON rendering of a decoded track descriptor (§3).
type trackDTO struct {
	Encoded    string  `json:"encoded"`
	Title      string  `json:"title"`
	Author     string  `json:"author"`
	Identifier string  `json:"identifier"`
	SourceName string  `json:"sourceName"`
	LengthMs   int64   `json:"length"`
	PositionMs int64   `json:"position"`
	IsStream   bool    `json:"isStream"`
	IsSeekable bool    `json:"isSeekable"`
	URI        *string `json:"uri,omitempty"`
	ArtworkURL *string `json:"artworkUrl,omitempty"`
	ISRC       *string `json:"isrc,omitempty"`
}

func trackToDTO(encoded string, t *trackcodec.Track) trackDTO {
	return trackDTO{
		Encoded:    encoded,
		Title:      t.Title,
		Author:     t.Author,
		Identifier: t.Identifier,
		SourceName: t.SourceName,
		LengthMs:   t.LengthMs,
		PositionMs: t.PositionMs,
		IsStream:   t.IsStream,
		IsSeekable: t.IsSeekable,
		URI:        t.URI,
		ArtworkURL: t.ArtworkURL,
		ISRC:       t.ISRC,
	}
}

// decodeTracksRequest is the POST /decodetracks body: an array of encoded
// blobs.
type decodeTracksRequest struct {
	Tracks []string `json:"tracks" binding:"required"`
}

// voiceDTO mirrors transport.Credentials for the PATCH player payload.
type voiceDTO struct {
	Endpoint  string `json:"endpoint"`
	Token     string `json:"token"`
	SessionID string `json:"sessionId"`
}

// equalizerBandDTO mirrors filterchain.EqualizerBand.
type equalizerBandDTO struct {
	Band int     `json:"band"`
	Gain float64 `json:"gain"`
}

// filtersDTO mirrors filterchain.Config for the REST boundary; every field
// is a pointer/slice so "absent" is distinguishable from "present at
// identity", matching filterchain.Config's own contract.
type filtersDTO struct {
	Volume *struct {
		Multiplier float64 `json:"multiplier"`
	} `json:"volume,omitempty"`
	Equalizer []equalizerBandDTO `json:"equalizer,omitempty"`
	Timescale *struct {
		Speed float64 `json:"speed"`
		Pitch float64 `json:"pitch"`
		Rate  float64 `json:"rate"`
	} `json:"timescale,omitempty"`
	Tremolo *struct {
		Frequency float64 `json:"frequency"`
		Depth     float64 `json:"depth"`
	} `json:"tremolo,omitempty"`
	Vibrato *struct {
		Frequency float64 `json:"frequency"`
		Depth     float64 `json:"depth"`
	} `json:"vibrato,omitempty"`
	Rotation *struct {
		RotationHz float64 `json:"rotationHz"`
	} `json:"rotation,omitempty"`
	Distortion *struct {
		SinOffset, SinScale float64
		CosOffset, CosScale float64
		TanOffset, TanScale float64
		Offset, Scale       float64
	} `json:"distortion,omitempty"`
	Karaoke *struct {
		Level     float64 `json:"level"`
		MonoLevel float64 `json:"monoLevel"`
	} `json:"karaoke,omitempty"`
	ChannelMix *struct {
		LeftToLeft, LeftToRight, RightToLeft, RightToRight float64
	} `json:"channelMix,omitempty"`
	LowPass *struct {
		Smoothing float64 `json:"smoothing"`
	} `json:"lowPass,omitempty"`
}

func (d *filtersDTO) toConfig() filterchain.Config {
	if d == nil {
		return filterchain.Config{}
	}
	cfg := filterchain.Config{}
	if d.Volume != nil {
		cfg.Volume = &filterchain.VolumeConfig{Multiplier: d.Volume.Multiplier}
	}
	for _, b := range d.Equalizer {
		cfg.Equalizer = append(cfg.Equalizer, filterchain.EqualizerBand{Band: b.Band, Gain: b.Gain})
	}
	if d.Timescale != nil {
		cfg.Timescale = &filterchain.TimescaleConfig{Speed: d.Timescale.Speed, Pitch: d.Timescale.Pitch, Rate: d.Timescale.Rate}
	}
	if d.Tremolo != nil {
		cfg.Tremolo = &filterchain.TremoloConfig{Frequency: d.Tremolo.Frequency, Depth: d.Tremolo.Depth}
	}
	if d.Vibrato != nil {
		cfg.Vibrato = &filterchain.VibratoConfig{Frequency: d.Vibrato.Frequency, Depth: d.Vibrato.Depth}
	}
	if d.Rotation != nil {
		cfg.Rotation = &filterchain.RotationConfig{RotationHz: d.Rotation.RotationHz}
	}
	if d.Distortion != nil {
		dd := d.Distortion
		cfg.Distortion = &filterchain.DistortionConfig{
			SinOffset: dd.SinOffset, SinScale: dd.SinScale,
			CosOffset: dd.CosOffset, CosScale: dd.CosScale,
			TanOffset: dd.TanOffset, TanScale: dd.TanScale,
			Offset: dd.Offset, Scale: dd.Scale,
		}
	}
	if d.Karaoke != nil {
		cfg.Karaoke = &filterchain.KaraokeConfig{Level: d.Karaoke.Level, MonoLevel: d.Karaoke.MonoLevel}
	}
	if d.ChannelMix != nil {
		cm := d.ChannelMix
		cfg.ChannelMix = &filterchain.ChannelMixConfig{
			LeftToLeft: cm.LeftToLeft, LeftToRight: cm.LeftToRight,
			RightToLeft: cm.RightToLeft, RightToRight: cm.RightToRight,
		}
	}
	if d.LowPass != nil {
		cfg.LowPass = &filterchain.LowPassConfig{Smoothing: d.LowPass.Smoothing}
	}
	return cfg
}

// patchPlayerRequest is the PATCH /sessions/{sid}/players/{gid} body (§6):
// every field optional.
type patchPlayerRequest struct {
	Track *struct {
		Encoded *string `json:"encoded"`
	} `json:"track,omitempty"`
	Position *int64      `json:"position,omitempty"`
	Paused   *bool       `json:"paused,omitempty"`
	Volume   *float64    `json:"volume,omitempty"`
	Voice    *voiceDTO   `json:"voice,omitempty"`
	Filters  *filtersDTO `json:"filters,omitempty"`
}

// playerDTO is the JSON rendering of a player snapshot.
type playerDTO struct {
	GuildID    string   `json:"guildId"`
	Track      *string  `json:"track,omitempty"`
	PositionMs int64    `json:"position"`
	Paused     bool     `json:"paused"`
	Volume     float64  `json:"volume"`
	State      string   `json:"state"`
}

// sessionDTO is the JSON rendering of §6 GET /sessions/{sid}.
type sessionDTO struct {
	SessionID            string `json:"sessionId"`
	ResumeEnabled        bool   `json:"resumeEnabled"`
	ResumeTimeoutSeconds int    `json:"resumeTimeoutSeconds"`
}

// patchSessionRequest is the §6 PATCH /sessions/{sid} body: resume config.
type patchSessionRequest struct {
	ResumeEnabled        *bool `json:"resumeEnabled,omitempty"`
	ResumeTimeoutSeconds *int  `json:"resumeTimeoutSeconds,omitempty"`
}

// infoDTO is the §6 GET /info static node info payload.
type infoDTO struct {
	Version       string `json:"version"`
	Name          string `json:"name"`
	SourceManagers []string `json:"sourceManagers"`
}
