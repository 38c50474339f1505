package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"runtime"

	glfw "github.com/go-gl/glfw/v3.3/glfw"
	"github.com/pkg/errors"
	"github.com/richinsley/goprocedural/descriptor"
	"github.com/richinsley/goprocedural/glfwcontext"
	"github.com/richinsley/goprocedural/options"
	"github.com/richinsley/goprocedural/procedural"
	"github.com/richinsley/goprocedural/renderer"
)

func init() {
	runtime.LockOSThread()
}

func runViewer(opts *options.Options) error {
	if err := glfwcontext.InitGraphics(); err != nil {
		return err
	}
	defer glfwcontext.TerminateGraphics()

	ctx, err := glfwcontext.New(opts)
	if err != nil {
		return errors.Wrap(err, "failed to initialize glfw context")
	}
	defer ctx.Shutdown()

	r, err := renderer.NewRenderer(ctx, opts)
	if err != nil {
		return errors.Wrap(err, "failed to create renderer")
	}
	defer r.Shutdown()

	procedural.SetEnableProceduralShaders(!*opts.Disabled)
	ctx.RegisterKeyCallback(glfw.KeyP, func() {
		enabled := !procedural.EnableProceduralShaders()
		procedural.SetEnableProceduralShaders(enabled)
		log.Printf("Procedural shaders enabled: %v", enabled)
	})

	material := procedural.NewProceduralMaterial(procedural.Config{Compiler: r.Backend()})

	watchCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var updates <-chan string
	if *opts.Descriptor == "" {
		material.SetProceduralString(options.DefaultDescriptor)
	} else {
		contents, err := descriptor.Load(*opts.Descriptor)
		if err != nil {
			return err
		}
		material.SetProceduralString(contents)
		updates, err = descriptor.Watch(watchCtx, *opts.Descriptor)
		if err != nil {
			log.Printf("Warning: descriptor hot reload disabled: %v", err)
		}
	}

	log.Println("Starting interactive render loop...")
	r.Run(material, updates)
	return nil
}

func main() {
	fs := flag.NewFlagSet(os.Args[0], flag.ExitOnError)
	opts, err := options.Parse(fs, os.Args[1:])
	if err != nil {
		log.Fatalf("Invalid options: %v", err)
	}
	if *opts.Help {
		fmt.Println("Procedural Material Viewer")
		fs.PrintDefaults()
		return
	}

	if err := runViewer(opts); err != nil {
		log.Fatalf("%v", err)
	}
}
