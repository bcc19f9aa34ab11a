package values

import (
	"fmt"

	"github.com/velograph/velograph/errors"
)

// CRS is a coordinate reference system for point values.
type CRS int

const (
	// Cartesian is a flat 2D plane, SRID 7203.
	Cartesian CRS = iota
	// WGS84 is the geographic longitude/latitude system, SRID 4326.
	WGS84
)

const (
	cartesianName = "cartesian"
	wgs84Name     = "WGS-84"
)

func (c CRS) Name() string {
	if c == WGS84 {
		return wgs84Name
	}
	return cartesianName
}

func (c CRS) Code() int {
	if c == WGS84 {
		return 4326
	}
	return 7203
}

// PointValue is a 2D point in a coordinate reference system. For WGS84 points
// X is the longitude and Y the latitude.
type PointValue struct {
	CRS CRS
	X   float64
	Y   float64
}

func (PointValue) Kind() Kind { return KindPoint }

func (v PointValue) String() string {
	return fmt.Sprintf("point({crs: %s, x: %g, y: %g})", v.CRS.Name(), v.X, v.Y)
}

func NewPointCartesian(x float64, y float64) PointValue {
	return PointValue{CRS: Cartesian, X: x, Y: y}
}

func NewPointGeographic(longitude float64, latitude float64) PointValue {
	return PointValue{CRS: WGS84, X: longitude, Y: latitude}
}

// PointFromMap builds a point from a coordinate map. Cartesian maps carry
// 'x' and 'y', geographic maps carry 'latitude' and 'longitude'; an optional
// 'crs' entry is validated against the implied system. A pair is committed to
// only when both of its keys are present, so a lone 'x' alongside a full
// geographic pair still resolves geographically. A map with no complete pair
// is ambiguous and rejected.
func PointFromMap(m MapValue) (PointValue, error) {
	_, xPresent := m["x"]
	_, yPresent := m["y"]
	if xPresent && yPresent {
		x, xOk := numberEntry(m, "x")
		y, yOk := numberEntry(m, "y")
		if !xOk || !yOk {
			return PointValue{}, errors.NewAmbiguousCoordinateSpecificationError()
		}
		crs, ok := m["crs"]
		if !ok {
			return NewPointCartesian(x, y), nil
		}
		crsName, err := crsName(crs)
		if err != nil {
			return PointValue{}, err
		}
		switch crsName {
		case cartesianName:
			return NewPointCartesian(x, y), nil
		case wgs84Name:
			return NewPointGeographic(x, y), nil
		default:
			return PointValue{}, errors.NewInvalidCoordinateReferenceSystemError(crsName)
		}
	}
	_, latPresent := m["latitude"]
	_, longPresent := m["longitude"]
	if latPresent && longPresent {
		latitude, latOk := numberEntry(m, "latitude")
		longitude, longOk := numberEntry(m, "longitude")
		if !latOk || !longOk {
			return PointValue{}, errors.NewAmbiguousCoordinateSpecificationError()
		}
		crs, ok := m["crs"]
		if !ok {
			return NewPointGeographic(longitude, latitude), nil
		}
		crsName, err := crsName(crs)
		if err != nil {
			return PointValue{}, err
		}
		if crsName != wgs84Name {
			return PointValue{}, errors.NewVeloErrorf(errors.InvalidCoordinateReferenceSystem,
				"Geographic points do not support coordinate reference system: %s", crsName)
		}
		return NewPointGeographic(longitude, latitude), nil
	}
	return PointValue{}, errors.NewAmbiguousCoordinateSpecificationError()
}

// AsMap renders the point back as a coordinate map equivalent to one accepted
// by PointFromMap.
func (v PointValue) AsMap() MapValue {
	if v.CRS == WGS84 {
		return MapValue{
			"longitude": Float64Value(v.X),
			"latitude":  Float64Value(v.Y),
			"crs":       StringValue(wgs84Name),
		}
	}
	return MapValue{
		"x":   Float64Value(v.X),
		"y":   Float64Value(v.Y),
		"crs": StringValue(cartesianName),
	}
}

func numberEntry(m MapValue, key string) (float64, bool) {
	v, ok := m[key]
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case Int64Value:
		return float64(n), true
	case Float64Value:
		return float64(n), true
	default:
		return 0, false
	}
}

func crsName(v Value) (string, error) {
	s, ok := v.(StringValue)
	if !ok {
		return "", errors.NewInvalidCoordinateReferenceSystemError(v.String())
	}
	return string(s), nil
}
