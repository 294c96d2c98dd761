package main

import (
	"math"

	"github.com/jython/jython-sub004/pkg/hostclass"
	"github.com/jython/jython-sub004/pkg/object"
	"github.com/jython/jython-sub004/pkg/runtime"
)

type point struct {
	x, y float64
}

type line struct {
	start, end *point
}

var (
	pointClass = &hostclass.HostClass{
		Name: "Point",
		New: func(args []runtime.Value) (any, error) {
			p := &point{}
			if len(args) == 0 {
				return p, nil
			}
			if len(args) != 2 {
				return nil, runtime.Errorf(runtime.ArityMismatch, "Point() takes 0 or 2 arguments (%d given)", len(args))
			}
			var okX, okY bool
			p.x, okX = runtime.AsFloat(args[0])
			p.y, okY = runtime.AsFloat(args[1])
			if !okX || !okY {
				return nil, runtime.Errorf(runtime.TypeError, "Point() arguments must be numbers")
			}
			return p, nil
		},
		Fields: []hostclass.Field{
			{Name: "x", Load: loadCoord(func(p *point) *float64 { return &p.x }), Store: storeCoord(func(p *point) *float64 { return &p.x })},
			{Name: "y", Load: loadCoord(func(p *point) *float64 { return &p.y }), Store: storeCoord(func(p *point) *float64 { return &p.y })},
		},
		Methods: []hostclass.Method{{
			Name: "norm", MinArgs: 0, MaxArgs: 0,
			Call: func(host any, _ []runtime.Value) (runtime.Value, error) {
				p := host.(*point)
				return runtime.Float(math.Hypot(p.x, p.y)), nil
			},
		}},
	}

	lineClass = &hostclass.HostClass{
		Name: "Line",
		New:  func([]runtime.Value) (any, error) { return &line{}, nil },
		Properties: []hostclass.Property{
			endpoint("start", func(l *line) **point { return &l.start }),
			endpoint("end", func(l *line) **point { return &l.end }),
		},
		Methods: []hostclass.Method{{
			Name: "length", MinArgs: 0, MaxArgs: 0,
			Call: func(host any, _ []runtime.Value) (runtime.Value, error) {
				l := host.(*line)
				if l.start == nil || l.end == nil {
					return nil, runtime.Errorf(runtime.TypeError, "line has no endpoints")
				}
				return runtime.Float(math.Hypot(l.end.x-l.start.x, l.end.y-l.start.y)), nil
			},
		}},
	}
)

func init() {
	lineClass.Properties[0].ValueType = pointClass
	lineClass.Properties[1].ValueType = pointClass
}

func loadHostClass(name string) (*hostclass.HostClass, error) {
	switch name {
	case "Point":
		return pointClass, nil
	case "Line":
		return lineClass, nil
	default:
		return nil, nil
	}
}

func loadCoord(field func(*point) *float64) func(any) (runtime.Value, error) {
	return func(host any) (runtime.Value, error) {
		return runtime.Float(*field(host.(*point))), nil
	}
}

func storeCoord(field func(*point) *float64) func(any, runtime.Value) error {
	return func(host any, v runtime.Value) error {
		f, ok := runtime.AsFloat(v)
		if !ok {
			return runtime.Errorf(runtime.TypeError, "coordinate must be a number, not '%s'", runtime.TypeName(v))
		}
		*field(host.(*point)) = f
		return nil
	}
}

func endpoint(name string, field func(*line) **point) hostclass.Property {
	return hostclass.Property{
		Name: name,
		Get: func(host any) (runtime.Value, error) {
			p := *field(host.(*line))
			if p == nil {
				return runtime.None, nil
			}
			return runtime.Tuple(runtime.Float(p.x), runtime.Float(p.y)), nil
		},
		Set: func(host any, v runtime.Value) error {
			inst, ok := v.(*object.Instance)
			if !ok {
				return runtime.Errorf(runtime.TypeError, "%s must be a Point, not '%s'", name, runtime.TypeName(v))
			}
			p, ok := inst.Host.(*point)
			if !ok {
				return runtime.Errorf(runtime.TypeError, "%s must be a Point, not '%s'", name, inst.TypeName())
			}
			*field(host.(*line)) = p
			return nil
		},
	}
}
