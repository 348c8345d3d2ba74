package receiver

import (
	"context"
	"fmt"
	"time"

	"github.com/elliotchance/orderedmap/v3"

	"github.com/danmuck/ubxctl/internal/ubx/dict"
	"github.com/danmuck/ubxctl/internal/ubx/schema"
)

// GeoCoords is a scaled position/heading view of NAV-PVT.
type GeoCoords struct {
	Lon     float64
	Lat     float64
	HeadMot float64
}

// GeoCoords polls NAV-PVT and returns scaled coordinates.
func (r *Receiver) GeoCoords(ctx context.Context) (GeoCoords, error) {
	rec, err := r.Request(ctx, dict.ClassNAV, 0x07, nil)
	if err != nil {
		return GeoCoords{}, err
	}
	scaled := ScaleRecord(rec)
	lon, err := fieldFloat(scaled, "lon")
	if err != nil {
		return GeoCoords{}, err
	}
	lat, err := fieldFloat(scaled, "lat")
	if err != nil {
		return GeoCoords{}, err
	}
	head, err := fieldFloat(scaled, "headMot")
	if err != nil {
		return GeoCoords{}, err
	}
	return GeoCoords{Lon: lon, Lat: lat, HeadMot: head}, nil
}

// DateTime polls NAV-PVT and returns the UTC timestamp it carries.
func (r *Receiver) DateTime(ctx context.Context) (time.Time, error) {
	rec, err := r.Request(ctx, dict.ClassNAV, 0x07, nil)
	if err != nil {
		return time.Time{}, err
	}
	get := func(name string) (int, error) {
		v, err := fieldUint(rec, name)
		return int(v), err
	}
	year, err := get("year")
	if err != nil {
		return time.Time{}, err
	}
	month, err := get("month")
	if err != nil {
		return time.Time{}, err
	}
	day, err := get("day")
	if err != nil {
		return time.Time{}, err
	}
	hour, err := get("hour")
	if err != nil {
		return time.Time{}, err
	}
	min, err := get("min")
	if err != nil {
		return time.Time{}, err
	}
	sec, err := get("sec")
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(year, time.Month(month), day, hour, min, sec, 0, time.UTC), nil
}

// Satellite is a per-space-vehicle view of one NAV-SAT block entry.
type Satellite struct {
	GnssID uint64
	SvID   uint64
	CNo    uint64
	Elev   int64
	Azim   int64
	PrRes  float64
	Used   bool
}

// Satellites polls NAV-SAT and returns the reported space vehicles.
func (r *Receiver) Satellites(ctx context.Context) ([]Satellite, error) {
	rec, err := r.Request(ctx, dict.ClassNAV, 0x35, nil)
	if err != nil {
		return nil, err
	}
	scaled := ScaleRecord(rec)
	v, ok := scaled.Fields.Get("svs")
	if !ok {
		return nil, fmt.Errorf("receiver: NAV-SAT record missing svs")
	}
	blocks, ok := v.([]*orderedmap.OrderedMap[string, any])
	if !ok {
		return nil, fmt.Errorf("receiver: NAV-SAT svs has unexpected shape")
	}
	out := make([]Satellite, 0, len(blocks))
	for _, blk := range blocks {
		var sat Satellite
		if g, ok := blk.Get("gnssId"); ok {
			sat.GnssID, _ = g.(uint64)
		}
		if s, ok := blk.Get("svId"); ok {
			sat.SvID, _ = s.(uint64)
		}
		if c, ok := blk.Get("cno"); ok {
			sat.CNo, _ = c.(uint64)
		}
		if e, ok := blk.Get("elev"); ok {
			sat.Elev, _ = e.(int64)
		}
		if a, ok := blk.Get("azim"); ok {
			sat.Azim, _ = a.(int64)
		}
		if p, ok := blk.Get("prRes"); ok {
			sat.PrRes, _ = p.(float64)
		}
		if f, ok := blk.Get("flags"); ok {
			if flags, ok := f.(*orderedmap.OrderedMap[string, uint32]); ok {
				used, _ := flags.Get("svUsed")
				sat.Used = used == 1
			}
		}
		out = append(out, sat)
	}
	return out, nil
}

// SoftwareVersion polls MON-VER and returns the firmware version string.
func (r *Receiver) SoftwareVersion(ctx context.Context) (string, error) {
	rec, err := r.Request(ctx, dict.ClassMON, 0x04, nil)
	if err != nil {
		return "", err
	}
	v, ok := rec.Fields.Get("swVersion")
	if !ok {
		return "", fmt.Errorf("receiver: MON-VER record missing swVersion")
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("receiver: MON-VER swVersion is not a string")
	}
	return s, nil
}

func fieldUint(rec *schema.Record, name string) (uint64, error) {
	v, ok := rec.Fields.Get(name)
	if !ok {
		return 0, fmt.Errorf("receiver: %s/%s record missing field %s", rec.Class, rec.Message, name)
	}
	u, ok := v.(uint64)
	if !ok {
		return 0, fmt.Errorf("receiver: %s/%s field %s is not unsigned", rec.Class, rec.Message, name)
	}
	return u, nil
}

func fieldFloat(rec *schema.Record, name string) (float64, error) {
	v, ok := rec.Fields.Get(name)
	if !ok {
		return 0, fmt.Errorf("receiver: %s/%s record missing field %s", rec.Class, rec.Message, name)
	}
	f, ok := v.(float64)
	if !ok {
		return 0, fmt.Errorf("receiver: %s/%s field %s is not scaled", rec.Class, rec.Message, name)
	}
	return f, nil
}
