package loader

import (
	"errors"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
)

type stubFeature struct {
	name    string
	enabled bool
	err     error
	loaded  bool
}

func (s *stubFeature) Name() string    { return s.name }
func (s *stubFeature) IsEnabled() bool { return s.enabled }
func (s *stubFeature) Load(app fiber.Router) error {
	s.loaded = true
	return s.err
}

func TestLoadAll(t *testing.T) {
	on := &stubFeature{name: "on", enabled: true}
	off := &stubFeature{name: "off"}

	m := NewManager()
	m.Register(on)
	m.Register(off)

	assert.NoError(t, m.LoadAll(fiber.New()))
	assert.True(t, on.loaded)
	assert.False(t, off.loaded)
	assert.Len(t, m.Features(), 2)
}

func TestLoadAllStopsOnError(t *testing.T) {
	bad := &stubFeature{name: "bad", enabled: true, err: errors.New("boom")}
	later := &stubFeature{name: "later", enabled: true}

	m := NewManager()
	m.Register(bad)
	m.Register(later)

	err := m.LoadAll(fiber.New())
	assert.EqualError(t, err, "failed to load feature bad: boom")
	assert.False(t, later.loaded)
}
