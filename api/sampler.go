package api

import (
	"encoding/json"
)

// Sampler is the sampler object of a texture channel, e.g.
// {"filter": "mipmap", "wrap": "clamp"}.
type Sampler struct {
	Filter      string    `json:"filter"`
	Wrap        string    `json:"wrap"`
	WrapU       string    `json:"wrapU,omitempty"`
	WrapV       string    `json:"wrapV,omitempty"`
	WrapW       string    `json:"wrapW,omitempty"`
	MaxMip      *float64  `json:"maxMip,omitempty"`
	MinMip      *float64  `json:"minMip,omitempty"`
	MipOffset   *float64  `json:"mipOffset,omitempty"`
	BorderColor []float64 `json:"borderColor,omitempty"`
}

// ChannelDescriptor is one resolved entry of the channels array.
type ChannelDescriptor struct {
	URL     string
	Sampler *Sampler // nil selects the default sampler
}

// ParseChannel interprets one channels entry: either a URL string or an
// object with a "url" string and an optional "sampler" object.
func ParseChannel(value any) (ChannelDescriptor, bool) {
	switch v := value.(type) {
	case string:
		return ChannelDescriptor{URL: v}, true
	case map[string]any:
		url, ok := v["url"].(string)
		if !ok {
			return ChannelDescriptor{}, false
		}
		desc := ChannelDescriptor{URL: url}
		if samplerObject, ok := v["sampler"].(map[string]any); ok {
			b, err := json.Marshal(samplerObject)
			if err == nil {
				var sampler Sampler
				if err := json.Unmarshal(b, &sampler); err == nil {
					desc.Sampler = &sampler
				}
			}
		}
		return desc, true
	}
	return ChannelDescriptor{}, false
}
