// Command play is a terminal stand-in for the AR client: a top-down view
// of the hunt driven over the same websocket protocol.
package main

import (
	"flag"
	"fmt"
	"log"
	"net/url"
	"os"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/gorilla/websocket"

	"treasurehunt/protocol"
)

func main() {
	server := flag.String("server", "ws://localhost:8080/ws", "websocket endpoint")
	code := flag.String("code", "", "join an existing session")
	name := flag.String("name", "", "player name")
	mute := flag.Bool("mute", false, "disable the collect chime")
	flag.Parse()

	if err := run(*server, *code, *name, *mute); err != nil {
		fmt.Fprintf(os.Stderr, "play: %v\n", err)
		os.Exit(1)
	}
}

func dialURL(server, code string) (string, error) {
	u, err := url.Parse(server)
	if err != nil {
		return "", fmt.Errorf("parse server url: %w", err)
	}
	if code != "" {
		q := u.Query()
		q.Set("code", code)
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}

func run(server, code, name string, mute bool) error {
	target, err := dialURL(server, code)
	if err != nil {
		return err
	}
	conn, _, err := websocket.DefaultDialer.Dial(target, nil)
	if err != nil {
		return fmt.Errorf("dial %s: %w", target, err)
	}
	defer conn.Close()

	send := func(typ string, payload any) error {
		b, err := protocol.Encode(typ, payload)
		if err != nil {
			return err
		}
		_ = conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
		return conn.WriteMessage(websocket.TextMessage, b)
	}
	if err := send(protocol.MsgHello, protocol.Hello{V: protocol.V, Name: name}); err != nil {
		return fmt.Errorf("send hello: %w", err)
	}

	snd, err := newSound(mute)
	if err != nil {
		log.Printf("audio disabled: %v", err)
	}
	defer snd.close()

	screen, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := screen.Init(); err != nil {
		return err
	}
	defer screen.Fini()

	g := newGame(screen, send, snd)
	return g.loop(conn)
}

func (g *game) loop(conn *websocket.Conn) error {
	incoming := make(chan protocol.Envelope, 64)
	readErr := make(chan error, 1)
	go func() {
		for {
			_, msg, err := conn.ReadMessage()
			if err != nil {
				readErr <- err
				return
			}
			env, err := protocol.DecodeEnvelope(msg)
			if err != nil {
				readErr <- err
				return
			}
			incoming <- env
		}
	}()

	events := make(chan tcell.Event, 100)
	go func() {
		for {
			ev := g.screen.PollEvent()
			if ev == nil {
				return
			}
			events <- ev
		}
	}()

	pose := time.NewTicker(time.Second / protocol.ClientPoseHz)
	defer pose.Stop()
	frame := time.NewTicker(50 * time.Millisecond)
	defer frame.Stop()

	for {
		select {
		case ev := <-events:
			switch ev := ev.(type) {
			case *tcell.EventKey:
				ok, err := g.handleKey(ev)
				if err != nil {
					return err
				}
				if !ok {
					return nil
				}
			case *tcell.EventResize:
				g.screen.Sync()
			}
		case env := <-incoming:
			if err := g.handleServer(env); err != nil {
				return err
			}
		case err := <-readErr:
			if websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				return nil
			}
			return fmt.Errorf("connection: %w", err)
		case <-pose.C:
			if err := g.sendPose(); err != nil {
				return err
			}
		case <-frame.C:
			g.draw()
		}
	}
}
