package source

import (
	"context"
	"math"
	"math/rand"
	"time"

	"github.com/jinank/smart-aqms/internal/models"
)

// Simulator generates sensor readings with a per-station random walk, a
// diurnal cycle on pm25 and temperature, and occasional pollution spikes.
type Simulator struct {
	stationIDs []int64
	rng        *rand.Rand
	state      map[int64]*stationState
	now        func() time.Time
}

type stationState struct {
	pm25 float64
	co2  float64
	wind float64
}

const defaultStationCount = 12

// NewSimulator builds a source over the given station IDs. An empty list
// falls back to synthetic IDs 1..defaultStationCount so the pipeline can run
// against an unseeded store.
func NewSimulator(stationIDs []int64, seed int64) *Simulator {
	if len(stationIDs) == 0 {
		stationIDs = make([]int64, defaultStationCount)
		for i := range stationIDs {
			stationIDs[i] = int64(i + 1)
		}
	}
	return &Simulator{
		stationIDs: stationIDs,
		rng:        rand.New(rand.NewSource(seed)),
		state:      map[int64]*stationState{},
		now:        time.Now,
	}
}

func (s *Simulator) Next(_ context.Context, size int) ([]models.Reading, error) {
	now := s.now().UTC()
	minute := float64(now.Hour()*60 + now.Minute())
	batch := make([]models.Reading, 0, size)
	for i := 0; i < size; i++ {
		sid := s.stationIDs[s.rng.Intn(len(s.stationIDs))]
		batch = append(batch, s.step(sid, now, minute))
	}
	return batch, nil
}

func (s *Simulator) step(sid int64, now time.Time, minute float64) models.Reading {
	st, ok := s.state[sid]
	if !ok {
		st = &stationState{
			pm25: 5 + s.rng.Float64()*20,
			co2:  400 + s.rng.Float64()*300,
			wind: s.rng.Float64() * 5,
		}
		s.state[sid] = st
	}

	dayPhase := 2 * math.Pi * minute / 1440.0
	diurnal := 10 + 10*math.Sin(dayPhase)

	st.pm25 = math.Max(0, st.pm25+s.rng.NormFloat64())
	if s.rng.Float64() < 0.02 {
		// Pollution spike: traffic burst, local fire, inversion layer.
		st.pm25 += 20 + s.rng.Float64()*40
	}
	st.co2 += s.rng.NormFloat64() * 5

	temp := 18 + 7*math.Sin(dayPhase) + s.rng.NormFloat64()*0.5
	hum := clamp(60-(temp-18)*1.2+s.rng.NormFloat64()*2, 15, 95)
	st.wind = clamp(st.wind+s.rng.NormFloat64()*0.2, 0, 12)

	return models.Reading{
		StationID:    sid,
		TS:           now,
		PM25:         st.pm25 + diurnal,
		CO2PPM:       st.co2,
		TemperatureC: temp,
		Humidity:     hum,
		WindSpeed:    st.wind,
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
