package value_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/karupanerura/bootjs-emulator/internal/types"
	"github.com/karupanerura/bootjs-emulator/internal/value"
	"github.com/samber/lo"
)

type function struct {
	*value.BaseObject
	fn func(this value.Value, args []value.Value) (value.Value, error)
}

func newFunction(fn func(this value.Value, args []value.Value) (value.Value, error)) *function {
	f := &function{fn: fn}
	f.BaseObject = value.NewBaseObject(f, "Function", nil)
	return f
}

func (f *function) Call(this value.Value, args []value.Value) (value.Value, error) {
	return f.fn(this, args)
}

var (
	nameA = value.NewString("a")
	nameB = value.NewString("b")
)

func keysOf(o value.Object) []string {
	return lo.Map(o.OwnKeys(), func(key value.String, _ int) string {
		return key.String()
	})
}

func mustGet(t *testing.T, o value.Object, name value.String) value.Value {
	t.Helper()
	v, err := o.Get(name)
	if err != nil {
		t.Fatal(err)
	}
	return v
}

func TestDefineOwnPropertyFresh(t *testing.T) {
	t.Parallel()

	o := value.NewObject(nil)
	ok, err := o.DefineOwnProperty(nameA, &value.PropertyDescriptor{Value: value.Number(42)}, true)
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatal("should be defined")
	}

	if v := mustGet(t, o, nameA); !value.SameValue(v, value.Number(42)) {
		t.Errorf("expect to 42 but got %v", v)
	}

	desc := o.GetOwnProperty(nameA)
	if desc.IsWritable() || desc.IsEnumerable() || desc.IsConfigurable() {
		t.Errorf("absent attributes should default to false: %+v", desc)
	}
	if desc.Writable == nil || desc.Enumerable == nil || desc.Configurable == nil {
		t.Errorf("stored descriptor should be normalized: %+v", desc)
	}
}

func TestDefineOwnPropertyNotExtensible(t *testing.T) {
	t.Parallel()

	o := value.NewObject(nil)
	o.PreventExtensions()

	ok, err := o.DefineOwnProperty(nameA, value.NewDataDescriptor(value.One, true, true, true), false)
	if err != nil || ok {
		t.Errorf("expect to be rejected silently but got (%v, %v)", ok, err)
	}

	_, err = o.DefineOwnProperty(nameA, value.NewDataDescriptor(value.One, true, true, true), true)
	if !types.IsTag(err, types.TypeErrorTag) {
		t.Errorf("expect TypeError but got %v", err)
	}
	if o.HasProperty(nameA) {
		t.Error("property should not exist")
	}
}

func TestDefineOwnPropertyImmutable(t *testing.T) {
	t.Parallel()

	for _, tt := range []struct {
		name     string
		current  *value.PropertyDescriptor
		desc     *value.PropertyDescriptor
		accepted bool
	}{
		{
			name:     "empty descriptor",
			current:  value.NewDataDescriptor(value.One, false, false, false),
			desc:     &value.PropertyDescriptor{},
			accepted: true,
		},
		{
			name:     "same value",
			current:  value.NewDataDescriptor(value.One, false, false, false),
			desc:     &value.PropertyDescriptor{Value: value.One},
			accepted: true,
		},
		{
			name:     "different value",
			current:  value.NewDataDescriptor(value.One, false, false, false),
			desc:     &value.PropertyDescriptor{Value: value.Number(2)},
			accepted: false,
		},
		{
			name:     "become writable",
			current:  value.NewDataDescriptor(value.One, false, false, false),
			desc:     &value.PropertyDescriptor{Writable: lo.ToPtr(true)},
			accepted: false,
		},
		{
			name:     "become configurable",
			current:  value.NewDataDescriptor(value.One, true, false, false),
			desc:     &value.PropertyDescriptor{Configurable: lo.ToPtr(true)},
			accepted: false,
		},
		{
			name:     "flip enumerable",
			current:  value.NewDataDescriptor(value.One, true, false, false),
			desc:     &value.PropertyDescriptor{Enumerable: lo.ToPtr(true)},
			accepted: false,
		},
		{
			name:     "switch to accessor",
			current:  value.NewDataDescriptor(value.One, true, false, false),
			desc:     &value.PropertyDescriptor{Get: value.Undefined},
			accepted: false,
		},
		{
			name:     "writable value change",
			current:  value.NewDataDescriptor(value.One, true, false, false),
			desc:     &value.PropertyDescriptor{Value: value.Number(2)},
			accepted: true,
		},
		{
			name:     "drop writable",
			current:  value.NewDataDescriptor(value.One, true, false, false),
			desc:     &value.PropertyDescriptor{Writable: lo.ToPtr(false)},
			accepted: true,
		},
	} {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			for _, throw := range []bool{false, true} {
				o := value.NewObject(nil)
				if _, err := o.DefineOwnProperty(nameA, tt.current, true); err != nil {
					t.Fatal(err)
				}
				before := o.GetOwnProperty(nameA)

				ok, err := o.DefineOwnProperty(nameA, tt.desc, throw)
				if tt.accepted {
					if !ok || err != nil {
						t.Errorf("throw=%v: expect to be accepted but got (%v, %v)", throw, ok, err)
					}
					continue
				}

				if ok {
					t.Errorf("throw=%v: should be rejected", throw)
				}
				if throw && !types.IsTag(err, types.TypeErrorTag) {
					t.Errorf("expect TypeError but got %v", err)
				}
				if !throw && err != nil {
					t.Errorf("expect no error but got %v", err)
				}

				after := o.GetOwnProperty(nameA)
				if !value.SameValue(before.Value, after.Value) || before.IsWritable() != after.IsWritable() ||
					before.IsEnumerable() != after.IsEnumerable() || before.IsConfigurable() != after.IsConfigurable() {
					t.Errorf("throw=%v: stored property changed from %+v to %+v", throw, before, after)
				}
			}
		})
	}
}

func TestDefineOwnPropertyConversion(t *testing.T) {
	t.Parallel()

	get := newFunction(func(value.Value, []value.Value) (value.Value, error) {
		return value.NewString("got"), nil
	})

	o := value.NewObject(nil)
	if _, err := o.DefineOwnProperty(nameA, value.NewDataDescriptor(value.One, true, true, true), true); err != nil {
		t.Fatal(err)
	}
	if _, err := o.DefineOwnProperty(nameA, &value.PropertyDescriptor{Get: get}, true); err != nil {
		t.Fatal(err)
	}

	desc := o.GetOwnProperty(nameA)
	if !desc.IsAccessorDescriptor() || desc.IsDataDescriptor() {
		t.Fatalf("expect accessor property but got %+v", desc)
	}
	if !desc.IsEnumerable() || !desc.IsConfigurable() {
		t.Errorf("attributes should be preserved: %+v", desc)
	}
	if !value.IsUndefined(desc.Set) {
		t.Errorf("setter should be reset to undefined: %+v", desc.Set)
	}
	if v := mustGet(t, o, nameA); !value.SameValue(v, value.NewString("got")) {
		t.Errorf("expect getter result but got %v", v)
	}

	if _, err := o.DefineOwnProperty(nameA, &value.PropertyDescriptor{Value: value.Number(3)}, true); err != nil {
		t.Fatal(err)
	}
	desc = o.GetOwnProperty(nameA)
	if !desc.IsDataDescriptor() || desc.IsWritable() {
		t.Errorf("expect non-writable data property but got %+v", desc)
	}
}

func TestAccessorProperty(t *testing.T) {
	t.Parallel()

	var stored value.Value = value.Undefined
	get := newFunction(func(this value.Value, _ []value.Value) (value.Value, error) {
		return stored, nil
	})
	set := newFunction(func(this value.Value, args []value.Value) (value.Value, error) {
		stored = args[0]
		return value.Undefined, nil
	})

	proto := value.NewObject(nil)
	if _, err := proto.DefineOwnProperty(nameA, value.NewAccessorDescriptor(get, set, true, true), true); err != nil {
		t.Fatal(err)
	}
	o := value.NewObject(proto)

	if err := o.Put(nameA, value.Number(5), true); err != nil {
		t.Fatal(err)
	}
	if o.GetOwnProperty(nameA) != nil {
		t.Error("inherited setter should not create an own property")
	}
	if v := mustGet(t, o, nameA); !value.SameValue(v, value.Number(5)) {
		t.Errorf("expect to 5 but got %v", v)
	}
}

func TestGetPropertyWalksChain(t *testing.T) {
	t.Parallel()

	grand := value.NewObject(nil)
	if err := grand.Put(nameA, value.NewString("grand"), true); err != nil {
		t.Fatal(err)
	}
	parent := value.NewObject(grand)
	child := value.NewObject(parent)

	if !child.HasProperty(nameA) {
		t.Fatal("property of the grand prototype should be visible")
	}
	if v := mustGet(t, child, nameA); !value.SameValue(v, value.NewString("grand")) {
		t.Errorf("expect to grand but got %v", v)
	}
	if child.HasProperty(nameB) {
		t.Error("unknown property should not be visible")
	}
	if v := mustGet(t, child, nameB); !value.IsUndefined(v) {
		t.Errorf("expect to undefined but got %v", v)
	}
}

func TestPut(t *testing.T) {
	t.Parallel()

	proto := value.NewObject(nil)
	if _, err := proto.DefineOwnProperty(nameA, value.NewDataDescriptor(value.One, false, true, true), true); err != nil {
		t.Fatal(err)
	}
	if err := proto.Put(nameB, value.One, true); err != nil {
		t.Fatal(err)
	}
	o := value.NewObject(proto)

	if err := o.Put(nameA, value.Number(2), false); err != nil {
		t.Errorf("non-strict put should fail silently: %v", err)
	}
	if err := o.Put(nameA, value.Number(2), true); !types.IsTag(err, types.TypeErrorTag) {
		t.Errorf("expect TypeError but got %v", err)
	}
	if v := mustGet(t, o, nameA); !value.SameValue(v, value.One) {
		t.Errorf("read-only inherited property should be unchanged: %v", v)
	}

	if err := o.Put(nameB, value.Number(2), true); err != nil {
		t.Fatal(err)
	}
	if v := mustGet(t, o, nameB); !value.SameValue(v, value.Number(2)) {
		t.Errorf("expect to 2 but got %v", v)
	}
	if v := mustGet(t, proto, nameB); !value.SameValue(v, value.One) {
		t.Errorf("prototype should be unchanged: %v", v)
	}

	desc := o.GetOwnProperty(nameB)
	if !desc.IsWritable() || !desc.IsEnumerable() || !desc.IsConfigurable() {
		t.Errorf("put should create a plain property: %+v", desc)
	}
}

func TestDelete(t *testing.T) {
	t.Parallel()

	o := value.NewObject(nil)
	if err := o.Put(nameA, value.One, true); err != nil {
		t.Fatal(err)
	}
	if _, err := o.DefineOwnProperty(nameB, value.NewDataDescriptor(value.One, true, true, false), true); err != nil {
		t.Fatal(err)
	}

	if ok, err := o.Delete(nameA, true); !ok || err != nil {
		t.Errorf("expect to be deleted but got (%v, %v)", ok, err)
	}
	if ok, err := o.Delete(nameB, false); ok || err != nil {
		t.Errorf("expect (false, nil) but got (%v, %v)", ok, err)
	}
	if _, err := o.Delete(nameB, true); !types.IsTag(err, types.TypeErrorTag) {
		t.Errorf("expect TypeError but got %v", err)
	}
	if ok, err := o.Delete(value.NewString("missing"), true); !ok || err != nil {
		t.Errorf("deleting a missing property should succeed: (%v, %v)", ok, err)
	}

	if diff := cmp.Diff([]string{"b"}, keysOf(o)); diff != "" {
		t.Errorf("(-expected, +actual)\n%s", diff)
	}
}

func TestOwnKeysOrder(t *testing.T) {
	t.Parallel()

	o := value.NewObject(nil)
	for _, name := range []string{"z", "a", "m", "a"} {
		if err := o.Put(value.NewString(name), value.One, true); err != nil {
			t.Fatal(err)
		}
	}
	if diff := cmp.Diff([]string{"z", "a", "m"}, keysOf(o)); diff != "" {
		t.Errorf("(-expected, +actual)\n%s", diff)
	}
}

func TestDefaultValue(t *testing.T) {
	t.Parallel()

	o := value.NewObject(nil)
	if _, err := o.DefaultValue(value.HintNone); !types.IsTag(err, types.TypeErrorTag) {
		t.Errorf("expect TypeError but got %v", err)
	}

	valueOf := newFunction(func(value.Value, []value.Value) (value.Value, error) {
		return value.Number(10), nil
	})
	toString := newFunction(func(value.Value, []value.Value) (value.Value, error) {
		return value.NewString("ten"), nil
	})
	if err := o.Put(value.NewString("valueOf"), valueOf, true); err != nil {
		t.Fatal(err)
	}
	if err := o.Put(value.NewString("toString"), toString, true); err != nil {
		t.Fatal(err)
	}

	n, err := value.ToNumber(o)
	if err != nil {
		t.Fatal(err)
	}
	if n != 10 {
		t.Errorf("expect to 10 but got %v", n)
	}

	s, err := value.ToString(o)
	if err != nil {
		t.Fatal(err)
	}
	if s.String() != "ten" {
		t.Errorf("expect to ten but got %q", s.String())
	}
}
