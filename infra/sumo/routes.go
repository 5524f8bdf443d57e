package sumo

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/kilianp07/crossroad/core/model"
)

// VehicleType is a SUMO vType definition.
type VehicleType struct {
	XMLName     xml.Name `xml:"vType"`
	ID          string   `xml:"id,attr"`
	Accel       float64  `xml:"accel,attr"`
	Decel       float64  `xml:"decel,attr"`
	Sigma       float64  `xml:"sigma,attr"`
	Length      float64  `xml:"length,attr"`
	MaxSpeed    float64  `xml:"maxSpeed,attr"`
	SpeedFactor float64  `xml:"speedFactor,attr"`
	MinGap      float64  `xml:"minGap,attr"`
	GUIShape    string   `xml:"guiShape,attr"`
	SpeedDev    float64  `xml:"speedDev,attr"`
	Tau         float64  `xml:"tau,attr"`
}

// DefaultVehicleType returns the VehicleA type driven at maxSpeed.
func DefaultVehicleType(maxSpeed float64) VehicleType {
	return VehicleType{
		ID:          "VehicleA",
		Accel:       3.5,
		Decel:       5.0,
		Sigma:       0,
		Length:      5,
		MaxSpeed:    maxSpeed,
		SpeedFactor: 1.0,
		MinGap:      0,
		GUIShape:    "passenger",
		SpeedDev:    0,
		Tau:         0.1,
	}
}

type routeXML struct {
	XMLName xml.Name `xml:"route"`
	ID      string   `xml:"id,attr"`
	Edges   string   `xml:"edges,attr"`
}

type routesXML struct {
	XMLName xml.Name      `xml:"routes"`
	Types   []VehicleType `xml:"vType"`
	Routes  []routeXML    `xml:"route"`
}

// WriteRoutes encodes the vehicle type and every route of the table as a
// SUMO route file.
func WriteRoutes(w io.Writer, vt VehicleType, routes *model.RouteTable) error {
	doc := routesXML{Types: []VehicleType{vt}}
	for _, s := range routes.Specs() {
		if len(s.Edges) == 0 {
			return fmt.Errorf("route %s has no edges", s.Route)
		}
		doc.Routes = append(doc.Routes, routeXML{ID: string(s.Route), Edges: strings.Join(s.Edges, " ")})
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "    ")
	if err := enc.Encode(doc); err != nil {
		return err
	}
	if err := enc.Flush(); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\n")
	return err
}

// WriteRouteFile writes the route file to path, creating parent directories.
func WriteRouteFile(path string, vt VehicleType, routes *model.RouteTable) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteRoutes(f, vt, routes); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
