package client

import (
	"context"
	"errors"
	"fmt"

	"github.com/elyria/elyria/internal/core/ecs"
	"github.com/elyria/elyria/internal/core/events/bus"
	"github.com/elyria/elyria/internal/core/observability/log"
	"github.com/elyria/elyria/internal/core/protocol"
	"github.com/elyria/elyria/internal/core/transport"
	"github.com/elyria/elyria/internal/game"
	"github.com/go-gl/mathgl/mgl32"
	"golang.org/x/sync/errgroup"
)

// Client is a headless game client: one connection, one world, one loop.
type Client struct {
	config    Config
	logger    log.Log
	transport transport.Transport

	world    *ecs.World
	bus      bus.EventBus[Event]
	handlers *Handlers
	local    ecs.Entity

	pipeline   *Pipeline
	dispatcher *Dispatcher
	loop       *game.Loop
}

func New(config Config, logger log.Log, tr transport.Transport) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.Provide()
	}
	if tr == nil {
		var err error
		if tr, err = transport.New(config.Transport, logger); err != nil {
			return nil, err
		}
	}

	world := ecs.NewWorld()
	c := &Client{
		config:    config,
		logger:    logger.With(log.String("component", "client")),
		transport: tr,
		world:     world,
		bus:       bus.New[Event](),
		handlers:  NewHandlers(world, logger),
	}
	if err := c.handlers.Subscribe(c.bus); err != nil {
		return nil, err
	}

	c.local = world.NewEntity()
	ecs.Add(world, c.local, game.NewTransform(mgl32.Vec3{}))
	ecs.Add(world, c.local, game.LocalPlayer{
		Speed:     config.PlayerSpeed,
		Direction: protocol.DirectionDown,
		State:     protocol.StateIdle,
	})
	ecs.Add(world, c.local, game.Animation{
		Current: protocol.AnimationName(protocol.StateIdle, protocol.DirectionDown),
		Playing: true,
	})
	return c, nil
}

// Connect dials the server and assembles the pipeline and game loop. Extra
// systems run after the built-in ones.
func (c *Client) Connect(ctx context.Context, systems ...game.System) error {
	stream, err := c.transport.Dial(ctx, c.config.ServerAddr)
	if err != nil {
		return fmt.Errorf("connect %s: %w", c.config.ServerAddr, err)
	}
	c.pipeline = NewPipeline(stream, c.config, c.logger)
	c.dispatcher = NewDispatcher(c.pipeline.Events(), c.bus, c.logger)

	all := []game.System{
		c.dispatcher,
		game.LocalPlayerSystem{},
		game.ReconcileSystem{},
		game.NewTickSystem(game.NewSampler(c.config.TickRate), c.pipeline, c.logger),
	}
	c.loop = game.NewLoop(c.world, c.config.FrameRate, c.logger, append(all, systems...)...)

	c.logger.Info("Connected to server",
		log.String("addr", c.config.ServerAddr),
		log.String("transport", string(c.transport.Type())))
	return nil
}

// SetInput installs the input source sampled each frame. Call after Connect.
func (c *Client) SetInput(source func() game.Input) {
	c.loop.SetInput(source)
}

// Run drives the pipeline and the game loop until ctx is cancelled or the
// connection drops.
func (c *Client) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		err := c.pipeline.Run(gctx)
		if errors.Is(err, protocol.ErrConnectionClosed) && ctx.Err() == nil {
			return err
		}
		return ignoreCanceled(err)
	})
	g.Go(func() error {
		return ignoreCanceled(c.loop.Run(gctx))
	})
	return g.Wait()
}

// RunPipeline runs only the network side; the caller steps the loop itself.
func (c *Client) RunPipeline(ctx context.Context) error {
	return ignoreCanceled(c.pipeline.Run(ctx))
}

// Step advances the game loop by dt seconds from the calling goroutine.
func (c *Client) Step(dt float32) { c.loop.Step(dt) }

func (c *Client) World() *ecs.World { return c.world }

func (c *Client) Pipeline() *Pipeline { return c.pipeline }

func (c *Client) Handlers() *Handlers { return c.handlers }

// LocalPlayer returns the entity driven by input.
func (c *Client) LocalPlayer() ecs.Entity { return c.local }

func ignoreCanceled(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
