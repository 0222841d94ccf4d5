package render

import (
	"bytes"
	"embed"
	"fmt"
	"image"
	"sync"

	chesslib "github.com/corentings/chess/v2"
	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
	xdraw "golang.org/x/image/draw"
)

//go:embed assets/pieces/*.svg
var pieceArt embed.FS

type spriteKey struct {
	piece chesslib.Piece
	size  int
}

var (
	sprites   = map[spriteKey]image.Image{}
	spritesMu sync.RWMutex
)

// pieceSprite rasterizes the SVG art for a piece at the given square
// size. Curves are rendered at double resolution and scaled down so
// edges stay smooth on small boards.
func pieceSprite(piece chesslib.Piece, size int) (image.Image, error) {
	key := spriteKey{piece: piece, size: size}

	spritesMu.RLock()
	if img, ok := sprites[key]; ok {
		spritesMu.RUnlock()
		return img, nil
	}
	spritesMu.RUnlock()

	name := artPath(piece)
	data, err := pieceArt.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("read piece art %s: %w", name, err)
	}
	icon, err := oksvg.ReadIconStream(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parse piece art %s: %w", name, err)
	}

	big := size * 2
	icon.SetTarget(0, 0, float64(big), float64(big))
	raw := image.NewRGBA(image.Rect(0, 0, big, big))
	scanner := rasterx.NewScannerGV(big, big, raw, raw.Bounds())
	icon.Draw(rasterx.NewDasher(big, big, scanner), 1.0)

	img := image.NewRGBA(image.Rect(0, 0, size, size))
	xdraw.ApproxBiLinear.Scale(img, img.Bounds(), raw, raw.Bounds(), xdraw.Src, nil)

	spritesMu.Lock()
	sprites[key] = img
	spritesMu.Unlock()

	return img, nil
}

func artPath(piece chesslib.Piece) string {
	side := "w"
	if piece.Color() == chesslib.Black {
		side = "b"
	}

	var kind string
	switch piece.Type() {
	case chesslib.King:
		kind = "K"
	case chesslib.Queen:
		kind = "Q"
	case chesslib.Rook:
		kind = "R"
	case chesslib.Bishop:
		kind = "B"
	case chesslib.Knight:
		kind = "N"
	case chesslib.Pawn:
		kind = "P"
	}

	return fmt.Sprintf("assets/pieces/%s%s.svg", side, kind)
}
