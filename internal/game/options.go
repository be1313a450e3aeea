// internal/game/options.go
package game

import (
	"fmt"
	"math"
)

// AutoMoveLevel controls when cards are sunk to the foundations without a
// player gesture.
type AutoMoveLevel int

const (
	AutoMoveNever     AutoMoveLevel = 0
	AutoMoveFlingOnly AutoMoveLevel = 1 // only while following up a fling
	AutoMoveAlways    AutoMoveLevel = 2
)

// Options are the player-selectable settings of a game.
type Options struct {
	DealThree   bool          `json:"dealThree" yaml:"dealThree"`     // Klondike: deal three cards at a time
	Vegas       bool          `json:"vegas" yaml:"vegas"`             // Klondike: Vegas scoring with limited redeals
	SpiderSuits int           `json:"spiderSuits" yaml:"spiderSuits"` // Spider: 1, 2 or 4 suits
	AutoMove    AutoMoveLevel `json:"autoMove" yaml:"autoMove"`
}

// DefaultOptions returns the settings used when a client sends none.
func DefaultOptions() Options {
	return Options{
		DealThree:   true,
		Vegas:       false,
		SpiderSuits: 1,
		AutoMove:    AutoMoveAlways,
	}
}

// Validate checks ranges the setters cannot express in the type.
func (o Options) Validate() error {
	switch o.SpiderSuits {
	case 1, 2, 4:
	default:
		return fmt.Errorf("%w: spiderSuits must be 1, 2 or 4", ErrInvalidOption)
	}
	if o.AutoMove < AutoMoveNever || o.AutoMove > AutoMoveAlways {
		return fmt.Errorf("%w: autoMove must be 0, 1 or 2", ErrInvalidOption)
	}
	return nil
}

// Update applies the options present in newOpts, typically decoded from
// client JSON. Keys that are absent keep their old value.
func (o *Options) Update(newOpts map[string]interface{}) error {
	assignBool := func(field *bool, key string) error {
		if val, exists := newOpts[key]; exists && val != nil {
			b, ok := val.(bool)
			if !ok {
				return fmt.Errorf("%w: invalid type for %s", ErrInvalidOption, key)
			}
			*field = b
		}
		return nil
	}

	assignInt := func(field *int, key string) error {
		if val, exists := newOpts[key]; exists && val != nil {
			// JSON numbers arrive as float64
			switch v := val.(type) {
			case float64:
				if v != math.Trunc(v) {
					return fmt.Errorf("%w: %s must be a whole number", ErrInvalidOption, key)
				}
				*field = int(v)
			case int:
				*field = v
			default:
				return fmt.Errorf("%w: invalid type for %s", ErrInvalidOption, key)
			}
		}
		return nil
	}

	if err := assignBool(&o.DealThree, "dealThree"); err != nil {
		return err
	}
	if err := assignBool(&o.Vegas, "vegas"); err != nil {
		return err
	}
	if err := assignInt(&o.SpiderSuits, "spiderSuits"); err != nil {
		return err
	}
	auto := int(o.AutoMove)
	if err := assignInt(&auto, "autoMove"); err != nil {
		return err
	}
	o.AutoMove = AutoMoveLevel(auto)

	return o.Validate()
}

// ParseOptions applies newOpts on top of current and returns the result,
// leaving current untouched.
func ParseOptions(newOpts map[string]interface{}, current Options) (Options, error) {
	opts := current
	err := opts.Update(newOpts)
	return opts, err
}
