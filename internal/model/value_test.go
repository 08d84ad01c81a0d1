package model

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValue_Kinds(t *testing.T) {
	tests := []struct {
		name     string
		value    Value
		kind     Kind
		text     string
		iface    any
		goString string
	}{
		{name: "zero value", value: Value{}, kind: KindAbsent, text: "", iface: nil, goString: "<absent>"},
		{name: "absent", value: Absent(), kind: KindAbsent, text: "", iface: nil, goString: "<absent>"},
		{name: "string", value: String("PARABRISAS"), kind: KindString, text: "PARABRISAS", iface: "PARABRISAS", goString: `"PARABRISAS"`},
		{name: "empty string stays string", value: String(""), kind: KindString, text: "", iface: "", goString: `""`},
		{name: "number", value: Number(1234.5), kind: KindNumber, text: "1234.5", iface: 1234.5, goString: "1234.5"},
		{name: "nan", value: Number(math.NaN()), kind: KindAbsent, text: "", iface: nil, goString: "<absent>"},
		{name: "infinity", value: Number(math.Inf(1)), kind: KindAbsent, text: "", iface: nil, goString: "<absent>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.kind, tt.value.Kind())
			assert.Equal(t, tt.kind == KindAbsent, tt.value.IsAbsent())
			assert.Equal(t, tt.kind == KindString, tt.value.IsString())
			assert.Equal(t, tt.kind == KindNumber, tt.value.IsNumber())
			assert.Equal(t, tt.text, tt.value.Text())
			assert.Equal(t, tt.iface, tt.value.Interface())
			assert.Equal(t, tt.goString, tt.value.GoString())
		})
	}
}

func TestValue_Equal(t *testing.T) {
	assert.True(t, Absent().Equal(Number(math.NaN())))
	assert.True(t, String("A").Equal(String("A")))
	assert.True(t, Number(2).Equal(Number(2.0)))
	assert.False(t, String("2").Equal(Number(2)))
	assert.False(t, String("").Equal(Absent()))
	assert.False(t, Number(0).Equal(Absent()))
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "absent", KindAbsent.String())
	assert.Equal(t, "string", KindString.String())
	assert.Equal(t, "number", KindNumber.String())
}
