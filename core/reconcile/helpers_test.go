package reconcile

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

const (
	testDevice Type = "device"
	testField  Type = "cf"
)

func testModel() *Model {
	return MustModel(
		Schema{
			Type:        testDevice,
			Identifiers: []string{"name"},
			Attributes:  []string{"device_model", "serial"},
		},
		Schema{
			Type:              testField,
			Identifiers:       []string{"name", "device_name"},
			Attributes:        []string{"value"},
			Parent:            testDevice,
			ParentIdentifiers: []string{"device_name"},
		},
	)
}

func addDevice(t *testing.T, c *Container, name, serial string) *Record {
	t.Helper()
	rec := NewRecord(testDevice, map[string]string{"name": name}, Attributes{
		"device_model": String("DCS-7050"),
		"serial":       String(serial),
	})
	require.NoError(t, c.Register(rec))
	return rec
}

func addField(t *testing.T, c *Container, parent *Record, name string, v Value) *Record {
	t.Helper()
	rec := NewRecord(testField, map[string]string{"name": name, "device_name": parent.ID("name")}, Attributes{"value": v})
	require.NoError(t, c.Register(rec))
	require.NoError(t, c.AttachChild(parent, rec))
	return rec
}

// call records one invocation of fakeOps.
type call struct {
	Op  Op
	Key Key
}

// fakeOps records calls and returns configured errors per key.
type fakeOps struct {
	calls []call
	errs  map[Key]error
	seq   int
}

func newFakeOps() *fakeOps {
	return &fakeOps{errs: map[Key]error{}}
}

func (f *fakeOps) keyOf(target *Container, rec *Record) Key {
	schema, _ := target.Model().Schema(rec.Type)
	k, _ := schema.KeyOf(rec.IDs)
	return k
}

func (f *fakeOps) Create(ctx context.Context, target *Container, rec *Record) (*Record, error) {
	k := f.keyOf(target, rec)
	f.calls = append(f.calls, call{OpCreate, k})
	if err := f.errs[k]; err != nil {
		return nil, err
	}
	f.seq++
	rec.Ref = fmt.Sprintf("ref-%d", f.seq)
	return rec, nil
}

func (f *fakeOps) Update(ctx context.Context, target *Container, rec *Record, attrs Attributes) (*Record, error) {
	f.calls = append(f.calls, call{OpUpdate, rec.Key()})
	if err := f.errs[rec.Key()]; err != nil {
		return nil, err
	}
	return rec, nil
}

func (f *fakeOps) Delete(ctx context.Context, target *Container, rec *Record) (*Record, error) {
	f.calls = append(f.calls, call{OpDelete, rec.Key()})
	if err := f.errs[rec.Key()]; err != nil {
		return nil, err
	}
	return rec, nil
}

func testBackend(ops *fakeOps) Backend {
	return NewOpsSet("fake", map[Type]RecordOps{testDevice: ops, testField: ops})
}
