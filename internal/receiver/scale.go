package receiver

import (
	"github.com/elliotchance/orderedmap/v3"

	"github.com/danmuck/ubxctl/internal/ubx/schema"
)

// scaleFactors maps field names to the unit factor that converts the raw
// integer to its engineering unit, per the u-blox interface description.
// Scaling is applied to copies; decoded records always hold raw values.
var scaleFactors = map[string]float64{
	"lon":     1e-7,
	"lat":     1e-7,
	"headMot": 1e-5,
	"headAcc": 1e-5,

	"pDOP": 0.01,
	"gDOP": 0.01,
	"tDOP": 0.01,
	"vDOP": 0.01,
	"hDOP": 0.01,
	"nDOP": 0.01,
	"eDOP": 0.01,

	"headVeh": 1e-5,
	"magDec":  1e-2,
	"magAcc":  1e-2,

	"lonHp":    1e-9,
	"latHp":    1e-9,
	"heightHp": 0.1,
	"hMSLHp":   0.1,
	"hAcc":     0.1,
	"vAcc":     0.1,

	"ecefX": 0.1,
	"ecefY": 0.1,
	"ecefZ": 0.1,
	"pAcc":  0.1,

	"prRes": 0.1,

	"cAcc":    1e-5,
	"heading": 1e-5,

	"roll":  1e-5,
	"pitch": 1e-5,
	"yaw":   1e-5,
}

// ScaleRecord returns a copy of the record with every field named in the
// scale table converted to a float64 in engineering units. Repeated block
// entries are scaled too; bit fields are left as raw flag values.
func ScaleRecord(rec *schema.Record) *schema.Record {
	out := &schema.Record{
		Class:   rec.Class,
		Message: rec.Message,
		Fields:  orderedmap.NewOrderedMapWithCapacity[string, any](rec.Fields.Len()),
	}
	for name, v := range rec.Fields.AllFromFront() {
		out.Fields.Set(name, scaleValue(name, v))
	}
	return out
}

func scaleValue(name string, v any) any {
	if reps, ok := v.([]*orderedmap.OrderedMap[string, any]); ok {
		scaled := make([]*orderedmap.OrderedMap[string, any], len(reps))
		for i, rep := range reps {
			m := orderedmap.NewOrderedMapWithCapacity[string, any](rep.Len())
			for n, inner := range rep.AllFromFront() {
				m.Set(n, scaleValue(n, inner))
			}
			scaled[i] = m
		}
		return scaled
	}
	factor, ok := scaleFactors[name]
	if !ok {
		return v
	}
	switch t := v.(type) {
	case uint64:
		return float64(t) * factor
	case int64:
		return float64(t) * factor
	case float32:
		return float64(t) * factor
	case float64:
		return t * factor
	default:
		return v
	}
}
