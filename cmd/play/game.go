package main

import (
	"fmt"
	"math"

	"github.com/gdamore/tcell/v2"

	"treasurehunt/client"
	"treasurehunt/protocol"
)

const (
	stepMeters   = 0.1
	colsPerMeter = 8.0
	rowsPerMeter = 4.0
	// The walker moves at treasure height so the on-screen distance is
	// the distance the server checks.
	walkHeight = 0.3
)

var variantGlyphs = map[string]rune{
	"coin":    'c',
	"ruby":    'r',
	"emerald": 'e',
	"diamond": 'd',
	"crown":   'W',
}

// sender delivers one client message to the server.
type sender func(typ string, payload any) error

type game struct {
	screen tcell.Screen
	mirror *client.Mirror
	send   sender
	sound  *sound

	player   protocol.Vec3
	tracking bool
	moved    bool
}

func newGame(screen tcell.Screen, send sender, snd *sound) *game {
	return &game{
		screen: screen,
		mirror: client.NewMirror(),
		send:   send,
		sound:  snd,
		player: protocol.Vec3{Y: walkHeight},
	}
}

// handleKey reports false when the player asked to quit.
func (g *game) handleKey(ev *tcell.EventKey) (bool, error) {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return false, nil
	case tcell.KeyUp:
		g.move(0, -stepMeters)
	case tcell.KeyDown:
		g.move(0, stepMeters)
	case tcell.KeyLeft:
		g.move(-stepMeters, 0)
	case tcell.KeyRight:
		g.move(stepMeters, 0)
	case tcell.KeyRune:
		switch ev.Rune() {
		case 'q':
			return false, nil
		case ' ':
			return true, g.send(protocol.MsgTap, protocol.Tap{})
		case 'a':
			g.tracking = true
			return true, g.send(protocol.MsgAnchor, protocol.Anchor{})
		case 't':
			g.tracking = !g.tracking
			return true, g.send(protocol.MsgTracking, protocol.Tracking{Active: g.tracking})
		case 'r':
			return true, g.send(protocol.MsgRestart, protocol.Restart{})
		}
	}
	return true, nil
}

func (g *game) move(dx, dz float64) {
	g.player.X += dx
	g.player.Z += dz
	g.moved = true
}

// sendPose sends the walker position once per change.
func (g *game) sendPose() error {
	if !g.moved {
		return nil
	}
	g.moved = false
	return g.send(protocol.MsgPose, protocol.Pose{Player: g.player})
}

func (g *game) handleServer(env protocol.Envelope) error {
	if err := g.mirror.Apply(env); err != nil {
		return err
	}
	if env.T == protocol.MsgCollected && g.sound != nil {
		g.sound.collect()
	}
	return nil
}

// toScreen maps world x/z onto the terminal with the anchor at the center.
func (g *game) toScreen(p protocol.Vec3) (int, int) {
	w, h := g.screen.Size()
	x := w/2 + int(math.Round(p.X*colsPerMeter))
	y := h/2 + int(math.Round(p.Z*rowsPerMeter))
	return x, y
}

func (g *game) draw() {
	g.screen.Clear()
	w, h := g.screen.Size()

	dim := tcell.StyleDefault.Foreground(tcell.ColorGray)
	cx, cy := g.toScreen(protocol.Vec3{})
	g.screen.SetContent(cx, cy, '+', nil, dim)

	for _, t := range g.mirror.Treasures() {
		glyph, ok := variantGlyphs[t.Variant]
		if !ok {
			glyph = '?'
		}
		style := tcell.StyleDefault.Foreground(tcell.ColorYellow)
		if t.Collected {
			glyph = '*'
			style = tcell.StyleDefault.Foreground(tcell.ColorGreen).Bold(true)
		}
		x, y := g.toScreen(t.Position)
		g.screen.SetContent(x, y, glyph, nil, style)
	}

	px, py := g.toScreen(g.player)
	g.screen.SetContent(px, py, '@', nil, tcell.StyleDefault.Foreground(tcell.ColorWhite).Bold(true))

	white := tcell.StyleDefault.Foreground(tcell.ColorWhite)
	status := g.mirror.Status
	if status == "" {
		status = "Connecting..."
	}
	drawText(g.screen, 0, 0, white, fmt.Sprintf("%s  [%s]", status, g.mirror.Code))

	if !g.mirror.AnchorEstablished {
		drawText(g.screen, 0, 1, dim, "press a to confirm the anchor")
	} else if !g.mirror.TrackingActive {
		drawText(g.screen, 0, 1, dim, "tracking lost, press t")
	} else if t, d, ok := g.mirror.Nearest(g.player); ok && g.mirror.Phase == "hunting" {
		drawText(g.screen, 0, 1, dim, fmt.Sprintf("nearest %s %.2fm", t.Variant, d))
	}

	if g.mirror.Completed {
		banner := fmt.Sprintf(" Found all treasures in %.1fs! press r to play again ", float64(g.mirror.ElapsedMs)/1000)
		style := tcell.StyleDefault.Foreground(tcell.ColorBlack).Background(tcell.ColorYellow)
		drawText(g.screen, max(0, (w-len(banner))/2), h/2-2, style, banner)
	}
	if g.mirror.LastError != "" {
		drawText(g.screen, 0, h-2, tcell.StyleDefault.Foreground(tcell.ColorRed), g.mirror.LastError)
	}
	drawText(g.screen, 0, h-1, dim, "arrows move  space tap  a anchor  t tracking  r restart  q quit")

	g.screen.Show()
}

func drawText(s tcell.Screen, x, y int, style tcell.Style, text string) {
	for i, r := range []rune(text) {
		s.SetContent(x+i, y, r, nil, style)
	}
}
