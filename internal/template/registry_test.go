package template

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowfolio/portfolio-server-go/internal/model"
)

func TestRegistryLookup(t *testing.T) {
	r := NewRegistry(
		&Descriptor{ComponentName: "ChatbotTemplate", Kind: model.TemplateKindChat},
	)

	t.Run("finds registered component", func(t *testing.T) {
		d, ok := r.Lookup("ChatbotTemplate")
		require.True(t, ok)
		assert.Equal(t, model.TemplateKindChat, d.Kind)
	})

	t.Run("misses unknown component without error", func(t *testing.T) {
		d, ok := r.Lookup("NoSuchTemplate")
		assert.False(t, ok)
		assert.Nil(t, d)
	})
}

func TestRegistryList(t *testing.T) {
	r := NewRegistry(
		&Descriptor{ComponentName: "B"},
		&Descriptor{ComponentName: "A"},
	)

	list := r.List()
	require.Len(t, list, 2)
	assert.Equal(t, "A", list[0].ComponentName)
	assert.Equal(t, "B", list[1].ComponentName)
}

func TestDefaultRegistry(t *testing.T) {
	r := Default()

	chat, ok := r.Lookup("ChatbotTemplate")
	require.True(t, ok)
	assert.Equal(t, model.TemplateKindChat, chat.Kind)
	assert.Empty(t, chat.Fields)

	form, ok := r.Lookup("VideoGeneratorTemplate")
	require.True(t, ok)
	assert.Equal(t, model.TemplateKindForm, form.Kind)
	assert.NotEmpty(t, form.Fields)
}

func TestComingSoonDescriptor(t *testing.T) {
	assert.Equal(t, model.TemplateKindComingSoon, ComingSoon.Kind)
	assert.Empty(t, ComingSoon.Fields)
}
