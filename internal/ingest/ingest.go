// Package ingest holds the seam to the external dataset decoder and
// the derived transformations applied once at load time: converting
// tracking positions to the canonical pitch and mapping jersey numbers
// to player names. A dataset missing the columns a transform needs is
// passed through unmodified with a log line; ingestion never hard-fails
// on a missing column.
package ingest

import (
	"io"
	"log"

	"github.com/kickoff-data/pitchsync/internal/dataset"
	"github.com/kickoff-data/pitchsync/internal/match"
	"github.com/kickoff-data/pitchsync/internal/pitch"
)

// Decoder turns one raw feed into a columnar dataset. The production
// binary decoder lives outside this module; CSVDecoder covers fixtures
// and the command line.
type Decoder interface {
	Decode(r io.Reader) (*dataset.Dataset, error)
}

// FieldPlayerName is the column added by MapPlayerNames.
const FieldPlayerName = "player_name"

// ConvertTrackingPositions rewrites pos_x/pos_y from the metric
// tracking frame into canonical coordinates, returning a new dataset.
// Without both position columns the input is returned unchanged.
func ConvertTrackingPositions(ds *dataset.Dataset, conv pitch.Converter) *dataset.Dataset {
	posX, okX := ds.Column(match.FieldPosX)
	posY, okY := ds.Column(match.FieldPosY)
	if !okX || !okY {
		log.Printf("tracking dataset lacks %s/%s; keeping raw positions", match.FieldPosX, match.FieldPosY)
		return ds
	}

	n := ds.NumRows()
	xs := make([]float64, n)
	ys := make([]float64, n)
	for i := 0; i < n; i++ {
		xs[i], ys[i] = conv.ToCanonical(posX.Float(i), posY.Float(i))
	}

	out, err := ds.WithColumn(match.FieldPosX, dataset.FloatCol(xs))
	if err == nil {
		out, err = out.WithColumn(match.FieldPosY, dataset.FloatCol(ys))
	}
	if err != nil {
		log.Printf("position conversion failed: %v; keeping raw positions", err)
		return ds
	}
	return out
}

// MapPlayerNames adds a player_name column resolved from the roster.
// Rows without a roster match (including the ball and null jerseys)
// get the empty string. Missing source columns or an empty roster pass
// the dataset through unchanged.
func MapPlayerNames(ds *dataset.Dataset, meta *match.Metadata) *dataset.Dataset {
	if meta == nil || len(meta.Players) == 0 {
		return ds
	}
	teams, okT := ds.Column(match.FieldTeamOptaID)
	jerseys, okJ := ds.Column(match.FieldJerseyNo)
	if !okT || !okJ {
		log.Printf("tracking dataset lacks %s/%s; skipping jersey mapping", match.FieldTeamOptaID, match.FieldJerseyNo)
		return ds
	}

	n := ds.NumRows()
	names := make([]string, n)
	for i := 0; i < n; i++ {
		if jerseys.IsNull(i) {
			continue
		}
		names[i] = meta.PlayerName(teams.Int(i), jerseys.Int(i))
	}

	out, err := ds.WithColumn(FieldPlayerName, dataset.StringCol(names))
	if err != nil {
		log.Printf("jersey mapping failed: %v; continuing without player names", err)
		return ds
	}
	return out
}
