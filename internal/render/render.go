// Package render turns board positions into PNG images: colored
// squares, an embedded SVG piece set, an optional last-move tint and
// coordinate labels in the margin.
package render

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	imagedraw "image/draw"
	"image/png"

	chesslib "github.com/corentings/chess/v2"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

const defaultSquareSize = 72

// Options control a single render. The zero value produces a
// white-oriented board at the default size with no highlight.
type Options struct {
	SquareSize int    // pixels per square
	Flip       bool   // orient the board from black's side
	LastMove   string // UCI token to tint, "" for none
}

var (
	lightSquare = color.RGBA{233, 207, 163, 255}
	darkSquare  = color.RGBA{187, 136, 96, 255}
	moveTint    = color.NRGBA{R: 255, G: 228, B: 120, A: 140}
	labelColor  = color.NRGBA{R: 70, G: 64, B: 58, A: 255}
	marginColor = color.RGBA{244, 238, 228, 255}
)

// Render draws the position in fen and encodes it as PNG. A malformed
// LastMove token is ignored rather than failing the whole image.
func Render(fen string, opts Options) ([]byte, error) {
	opt, err := chesslib.FEN(fen)
	if err != nil {
		return nil, fmt.Errorf("render: bad fen %q: %v", fen, err)
	}
	board := chesslib.NewGame(opt).Position().Board()

	size := opts.SquareSize
	if size <= 0 {
		size = defaultSquareSize
	}
	margin := size / 2
	lay := layout{square: size, origin: image.Pt(margin, margin), flip: opts.Flip}

	total := size*8 + margin*2
	img := image.NewRGBA(image.Rect(0, 0, total, total))
	imagedraw.Draw(img, img.Bounds(), image.NewUniform(marginColor), image.Point{}, imagedraw.Src)

	drawSquares(img, lay)
	if err := drawPieces(img, board, lay); err != nil {
		return nil, err
	}
	if from, to, ok := parseMoveToken(opts.LastMove); ok {
		tintSquare(img, lay.rect(from))
		tintSquare(img, lay.rect(to))
	}
	drawLabels(img, lay, margin)

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("render: encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// layout maps squares to pixel rectangles for the chosen orientation.
type layout struct {
	square int
	origin image.Point
	flip   bool
}

func (l layout) rect(sq chesslib.Square) image.Rectangle {
	col := int(sq.File())
	row := 7 - int(sq.Rank())
	if l.flip {
		col = 7 - col
		row = int(sq.Rank())
	}
	x := l.origin.X + col*l.square
	y := l.origin.Y + row*l.square
	return image.Rect(x, y, x+l.square, y+l.square)
}

func drawSquares(img *image.RGBA, lay layout) {
	for i := 0; i < 64; i++ {
		sq := chesslib.Square(i)
		imagedraw.Draw(img, lay.rect(sq), image.NewUniform(squareColor(sq)), image.Point{}, imagedraw.Src)
	}
}

func drawPieces(img *image.RGBA, board *chesslib.Board, lay layout) error {
	for sq, piece := range board.SquareMap() {
		if piece == chesslib.NoPiece {
			continue
		}
		sprite, err := pieceSprite(piece, lay.square)
		if err != nil {
			return err
		}
		imagedraw.Draw(img, lay.rect(sq), sprite, image.Point{}, imagedraw.Over)
	}
	return nil
}

func tintSquare(img *image.RGBA, rect image.Rectangle) {
	imagedraw.Draw(img, rect, image.NewUniform(moveTint), image.Point{}, imagedraw.Over)
}

func drawLabels(img *image.RGBA, lay layout, margin int) {
	drawer := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(labelColor),
		Face: basicfont.Face7x13,
	}
	ascent := basicfont.Face7x13.Metrics().Ascent.Ceil()
	boardMax := lay.origin.Y + lay.square*8

	for r := 0; r < 8; r++ {
		rect := lay.rect(chesslib.NewSquare(chesslib.FileA, chesslib.Rank(r)))
		label := string(rune('1' + r))
		centerText(drawer, label, lay.origin.X-margin/2, rect.Min.Y+lay.square/2+ascent/2)
	}
	for f := 0; f < 8; f++ {
		rect := lay.rect(chesslib.NewSquare(chesslib.File(f), chesslib.Rank1))
		label := string(rune('a' + f))
		centerText(drawer, label, rect.Min.X+lay.square/2, boardMax+ascent+2)
	}
}

func centerText(drawer *font.Drawer, text string, centerX, baseline int) {
	width := drawer.MeasureString(text).Round()
	drawer.Dot = fixed.P(centerX-width/2, baseline)
	drawer.DrawString(text)
}

func squareColor(sq chesslib.Square) color.Color {
	if (int(sq.File())+int(sq.Rank()))%2 == 0 {
		return darkSquare
	}
	return lightSquare
}

func parseMoveToken(token string) (from, to chesslib.Square, ok bool) {
	if len(token) < 4 {
		return 0, 0, false
	}
	from, ok = squareFromToken(token[0:2])
	if !ok {
		return 0, 0, false
	}
	to, ok = squareFromToken(token[2:4])
	if !ok {
		return 0, 0, false
	}
	return from, to, true
}

func squareFromToken(s string) (chesslib.Square, bool) {
	if len(s) != 2 || s[0] < 'a' || s[0] > 'h' || s[1] < '1' || s[1] > '8' {
		return 0, false
	}
	return chesslib.NewSquare(chesslib.File(s[0]-'a'), chesslib.Rank(s[1]-'1')), true
}
