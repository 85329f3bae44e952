package views

import (
	"math"
	"strings"
)

const (
	MapWidth  = 480
	MapHeight = 400
	mapMargin = 30
)

// MapArea is the input for one area on the map.
type MapArea struct {
	ID            int64
	Name          string
	Vulnerability string
	Lat           *float64
	Lon           *float64
}

type Map struct {
	Title  string
	Width  int
	Height int
	Points []MapPoint
	Legend []LegendEntry
}

type MapPoint struct {
	X, Y          float64
	Name          string
	Vulnerability string
	Color         string
}

type LegendEntry struct {
	Label string
	Color string
}

const (
	MapTitle        = "Localização das Áreas"
	MapTitleEmpty   = "Nenhuma área cadastrada"
	MapTitleNoCoord = "Mapeamento indisponível (sem 'lat'/'lon')"
)

// VulnerabilityColor maps a vulnerability category to a marker color.
// Portuguese and English category names are both accepted.
func VulnerabilityColor(v string) string {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "high", "alta", "alto":
		return "#d62728"
	case "medium", "media", "média", "medio", "médio":
		return "#ff7f0e"
	case "low", "baixa", "baixo":
		return "#2ca02c"
	default:
		return "#7f7f7f"
	}
}

// BuildMap projects areas with coordinates onto an equirectangular box.
// Areas without lat/lon are left off the map.
func BuildMap(areas []MapArea) *Map {
	m := &Map{Title: MapTitle, Width: MapWidth, Height: MapHeight}
	if len(areas) == 0 {
		m.Title = MapTitleEmpty
		return m
	}

	var located []MapArea
	for _, a := range areas {
		if a.Lat != nil && a.Lon != nil {
			located = append(located, a)
		}
	}
	if len(located) == 0 {
		m.Title = MapTitleNoCoord
		return m
	}

	minLat, maxLat := *located[0].Lat, *located[0].Lat
	minLon, maxLon := *located[0].Lon, *located[0].Lon
	for _, a := range located[1:] {
		minLat, maxLat = math.Min(minLat, *a.Lat), math.Max(maxLat, *a.Lat)
		minLon, maxLon = math.Min(minLon, *a.Lon), math.Max(maxLon, *a.Lon)
	}

	seen := map[string]bool{}
	for _, a := range located {
		color := VulnerabilityColor(a.Vulnerability)
		m.Points = append(m.Points, MapPoint{
			X:             project(*a.Lon, minLon, maxLon, mapMargin, MapWidth-mapMargin),
			Y:             project(*a.Lat, maxLat, minLat, mapMargin, MapHeight-mapMargin),
			Name:          a.Name,
			Vulnerability: a.Vulnerability,
			Color:         color,
		})
		if !seen[a.Vulnerability] {
			seen[a.Vulnerability] = true
			m.Legend = append(m.Legend, LegendEntry{Label: a.Vulnerability, Color: color})
		}
	}
	return m
}

// project maps v from [from, to] onto [lo, hi]. A degenerate range lands
// in the middle.
func project(v, from, to float64, lo, hi int) float64 {
	if from == to {
		return float64(lo+hi) / 2
	}
	frac := (v - from) / (to - from)
	return round1(float64(lo) + frac*float64(hi-lo))
}
