package main

import (
	"fmt"
	"io"
	"sort"
	"strconv"

	"go.uber.org/zap"
)

type velocityRange struct {
	min, max uint8
}

type programStats struct {
	instruments int
	notes       int
	// held is the summed note duration in seconds
	held     float64
	velocity velocityRange
}

// program -> stats, drums kept apart under their own key
type programMap map[int]*programStats

const drumKey = -1

func newProgramMap(results []*result) programMap {
	log := convertLog.Named("newProgramMap")
	m := make(programMap)

	for _, r := range results {
		if r.err != nil {
			continue
		}

		for _, inst := range r.result.Instruments {
			key := int(inst.Program)
			if inst.IsDrum {
				key = drumKey
			}

			s, ok := m[key]
			if !ok {
				s = &programStats{velocity: velocityRange{min: 127}}
				m[key] = s
			}

			s.instruments++
			for _, n := range inst.Notes {
				s.notes++
				s.held += float64(n.Duration())
				if n.Velocity < s.velocity.min {
					s.velocity.min = n.Velocity
				}
				if n.Velocity > s.velocity.max {
					s.velocity.max = n.Velocity
				}
			}

			log.Debug("instrument", zap.String("name", r.name), zap.Int("program", key), zap.Int("notes", len(inst.Notes)))
		}
	}

	return m
}

func (m programMap) keys() []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}

func writeSummary(w io.Writer, m programMap) error {
	out := &textWriter{w: w}

	out.println(titleStyle.Render("programs"))
	out.println(row(headerStyle, "program", "count", "notes", "held", "velocity"))

	for _, k := range m.keys() {
		s := m[k]

		program := strconv.Itoa(k)
		if k == drumKey {
			program = "drums"
		}

		velocity := "-"
		if s.notes > 0 {
			velocity = fmt.Sprintf("%d-%d", s.velocity.min, s.velocity.max)
		}

		out.println(row(cellStyle,
			program,
			strconv.Itoa(s.instruments),
			strconv.Itoa(s.notes),
			strconv.FormatFloat(s.held, 'f', 3, 64)+"s",
			velocity))
	}

	return out.err
}
