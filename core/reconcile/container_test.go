package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewModel_Validation(t *testing.T) {
	t.Run("ParentMustComeFirst", func(t *testing.T) {
		_, err := NewModel(
			Schema{Type: "cf", Identifiers: []string{"name"}, Parent: "device", ParentIdentifiers: []string{"name"}},
			Schema{Type: "device", Identifiers: []string{"name"}},
		)
		assert.Error(t, err)
	})

	t.Run("DuplicateType", func(t *testing.T) {
		_, err := NewModel(
			Schema{Type: "device", Identifiers: []string{"name"}},
			Schema{Type: "device", Identifiers: []string{"name"}},
		)
		assert.Error(t, err)
	})

	t.Run("ChildrenInOrder", func(t *testing.T) {
		m := testModel()
		assert.Equal(t, []Type{testDevice, testField}, m.Types())
		assert.Equal(t, []Type{testField}, m.Children(testDevice))
		assert.Empty(t, m.Children(testField))
	})
}

func TestModel_Equal(t *testing.T) {
	assert.True(t, testModel().Equal(testModel()))

	reordered := MustModel(Schema{Type: testDevice, Identifiers: []string{"name"}, Attributes: []string{"serial", "device_model"}})
	assert.False(t, testModel().Equal(reordered))
	assert.False(t, testModel().Equal(nil))
}

func TestSchema_KeyOf(t *testing.T) {
	tag := Schema{Type: "tag", Identifiers: []string{"label", "value"}}
	key := func(label, value string) Key {
		k, err := tag.KeyOf(map[string]string{"label": label, "value": value})
		require.NoError(t, err)
		return k
	}

	assert.Equal(t, Key("topology_type__leaf"), key("topology_type", "leaf"))
	assert.Equal(t, Key("bgp__enabled"), key("bgp", "enabled"))

	assert.NotEqual(t, key("a__b", "c"), key("a", "b__c"))
	assert.NotEqual(t, key("a_", "b"), key("a", "_b"))
	assert.NotEqual(t, key("a%5F", "b"), key("a_", "b"))
}

func TestContainer_SeparatorInIdentifiers(t *testing.T) {
	tag := Schema{Type: "tag", Identifiers: []string{"label", "value"}}
	c := NewContainer("cloudvision", MustModel(tag), nil)

	assert.True(t, c.Add(NewRecord("tag", map[string]string{"label": "a__b", "value": "c"}, nil)))
	assert.True(t, c.Add(NewRecord("tag", map[string]string{"label": "a", "value": "b__c"}, nil)))
	assert.Equal(t, 2, c.Len())
}

func TestContainer_DuplicateIdentity(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	c := NewContainer("cloudvision", testModel(), zap.New(core))

	first := NewRecord(testDevice, map[string]string{"name": "sw1"}, Attributes{"serial": String("A")})
	second := NewRecord(testDevice, map[string]string{"name": "sw1"}, Attributes{"serial": String("B")})

	assert.True(t, c.Add(first))
	assert.False(t, c.Add(second))

	assert.Equal(t, 1, c.Len())
	assert.Equal(t, 1, logs.Len())

	got, err := c.Lookup(testDevice, "sw1")
	require.NoError(t, err)
	assert.Same(t, first, got)

	assert.ErrorIs(t, c.Register(second), ErrDuplicateIdentity)
}

func TestContainer_RegisterRequiresIdentifiers(t *testing.T) {
	c := NewContainer("test", testModel(), nil)

	err := c.Register(NewRecord(testField, map[string]string{"name": "arista_mpls"}, nil))
	assert.ErrorIs(t, err, ErrValidation)

	err = c.Register(NewRecord("vlan", map[string]string{"name": "10"}, nil))
	assert.Error(t, err)
}

func TestContainer_LookupNotFound(t *testing.T) {
	c := NewContainer("test", testModel(), nil)

	_, err := c.Lookup(testDevice, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestContainer_AttachChild(t *testing.T) {
	c := NewContainer("test", testModel(), nil)
	dev := addDevice(t, c, "sw1", "A")

	t.Run("UnregisteredChild", func(t *testing.T) {
		loose := NewRecord(testField, map[string]string{"name": "arista_bgp", "device_name": "sw1"}, nil)
		assert.ErrorIs(t, c.AttachChild(dev, loose), ErrNotFound)
	})

	t.Run("UnregisteredParent", func(t *testing.T) {
		ghost := NewRecord(testDevice, map[string]string{"name": "ghost"}, nil)
		child := NewRecord(testField, map[string]string{"name": "arista_bgp", "device_name": "ghost"}, nil)
		require.NoError(t, c.Register(child))
		assert.ErrorIs(t, c.AttachChild(ghost, child), ErrNotFound)
	})

	t.Run("WrongParentType", func(t *testing.T) {
		other := addDevice(t, c, "sw2", "B")
		assert.Error(t, c.AttachChild(dev, other))
	})

	t.Run("ChildReachableBothWays", func(t *testing.T) {
		cf := addField(t, c, dev, "arista_mpls", Bool(true))

		assert.Equal(t, []Key{cf.Key()}, dev.Children(testField))
		assert.Equal(t, dev.Key(), cf.Parent())

		got, err := c.Lookup(testField, cf.Key())
		require.NoError(t, err)
		assert.Same(t, cf, got)

		// Attaching twice does not duplicate the link.
		require.NoError(t, c.AttachChild(dev, cf))
		assert.Len(t, dev.Children(testField), 1)
	})
}

func TestContainer_AllKeepsInsertionOrder(t *testing.T) {
	c := NewContainer("test", testModel(), nil)
	for _, name := range []string{"sw3", "sw1", "sw2"} {
		addDevice(t, c, name, "")
	}

	var names []string
	for _, rec := range c.All(testDevice) {
		names = append(names, rec.ID("name"))
	}
	assert.Equal(t, []string{"sw3", "sw1", "sw2"}, names)
}

func TestContainer_RemoveUnlinksParent(t *testing.T) {
	c := NewContainer("test", testModel(), nil)
	dev := addDevice(t, c, "sw1", "A")
	cf := addField(t, c, dev, "arista_mpls", Bool(true))
	addField(t, c, dev, "arista_bgp", String("enabled"))

	require.NoError(t, c.Remove(testField, cf.Key()))

	assert.False(t, c.Has(testField, cf.Key()))
	assert.Equal(t, []Key{"arista_bgp__sw1"}, dev.Children(testField))
	assert.Len(t, c.All(testField), 1)
	assert.ErrorIs(t, c.Remove(testField, cf.Key()), ErrNotFound)
}
