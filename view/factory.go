package view

import (
	"github.com/pkg/errors"
)

// Config describes a view in a manifest. Only the fields that apply to Kind
// are consulted.
type Config struct {
	Kind Kind   `json:"kind"`
	Name string `json:"name"`

	Channel string `json:"channel"`
	Subset  string `json:"subset"`

	// histogram
	XFacet   string `json:"xfacet"`
	YFacet   string `json:"yfacet"`
	HueFacet string `json:"huefacet"`

	// heat, pie and petal
	Variable  string   `json:"variable"`
	Facets    []string `json:"facets"`
	Function  string   `json:"function"`
	Locations []string `json:"locations"`

	// range
	Wrap *Config `json:"view"`

	Options Options `json:"options"`
}

// New builds the view described by cfg.
func New(cfg Config) (View, error) {
	switch cfg.Kind {
	case KindHistogram:
		return &HistogramView{
			Name:     cfg.Name,
			Channel:  cfg.Channel,
			XFacet:   cfg.XFacet,
			YFacet:   cfg.YFacet,
			HueFacet: cfg.HueFacet,
			Subset:   cfg.Subset,
		}, nil

	case KindPie, KindPetal, KindHeat:
		style := Style(cfg.Kind)
		return &PieView{
			Name:      cfg.Name,
			Variable:  cfg.Variable,
			Facets:    cfg.Facets,
			Channel:   cfg.Channel,
			Function:  cfg.Function,
			Locations: cfg.Locations,
			Style:     style,
			Subset:    cfg.Subset,
		}, nil

	case KindRange:
		if cfg.Wrap == nil {
			return nil, errors.Wrapf(ErrInvalidView, "range view %q has no view to wrap", cfg.Name)
		}
		base, err := New(*cfg.Wrap)
		if err != nil {
			return nil, errors.Wrapf(err, "range view %q", cfg.Name)
		}
		return NewRangeSelection(base), nil
	}

	return nil, errors.Wrapf(ErrUnknownView, "%q", cfg.Kind)
}

// Kinds lists the view kinds New understands.
func Kinds() []Kind {
	return []Kind{KindHistogram, KindHeat, KindPie, KindPetal, KindRange}
}
