// Package pipeline generates one complete scene: layout, lights, objects,
// target, camera rig, and every camera's images and metadata.
package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/RunnersNum40/Kubric-Pallets/internal/camrig"
	"github.com/RunnersNum40/Kubric-Pallets/internal/catalog"
	"github.com/RunnersNum40/Kubric-Pallets/internal/metadata"
	"github.com/RunnersNum40/Kubric-Pallets/internal/output"
	"github.com/RunnersNum40/Kubric-Pallets/internal/render"
	"github.com/RunnersNum40/Kubric-Pallets/internal/sampling"
	"github.com/RunnersNum40/Kubric-Pallets/internal/scatter"
	"github.com/RunnersNum40/Kubric-Pallets/internal/warehouse"
)

// Options configure a Generator.
type Options struct {
	OutputDir     string
	NumAngles     int
	Distances     []float64
	Width, Height int
	Seed          uint64 // batch seed; each scene derives its own
	Ranges        scatter.Ranges
	Writer        output.Writer
	Materials     render.MaterialApplier

	// OnStage, if set, runs before each stage is entered. A non-nil error
	// aborts the scene.
	OnStage func(sceneIndex int, stage Stage) error
}

// Generator builds scenes with one renderer. Not safe for concurrent use;
// run one per worker.
type Generator struct {
	cat      *catalog.Catalog
	renderer render.Renderer
	opts     Options
	logger   *zap.SugaredLogger
}

// NewGenerator creates a Generator. cat is only read.
func NewGenerator(cat *catalog.Catalog, r render.Renderer, opts Options, logger *zap.SugaredLogger) *Generator {
	if opts.Materials == nil {
		opts.Materials = render.Materials{}
	}
	if opts.Ranges == nil {
		opts.Ranges = scatter.DefaultRanges()
	}
	return &Generator{cat: cat, renderer: r, opts: opts, logger: logger}
}

// sceneRun carries one scene through the stages.
type sceneRun struct {
	index  int
	stage  Stage
	smp    *sampling.Sampler
	scene  *render.Scene
	dims   warehouse.Dimensions
	target *render.Entity
	poses  []camrig.Pose
	dir    string
}

// Generate runs every stage for scene sceneIndex and writes its outputs
// under OutputDir/scene_<i>. Files already written when a stage fails are
// left in place.
func (g *Generator) Generate(ctx context.Context, sceneIndex int) error {
	start := time.Now()
	run := &sceneRun{
		index: sceneIndex,
		stage: StageInit,
		smp:   sampling.New(sampling.SceneSeed(g.opts.Seed, sceneIndex)),
		scene: render.NewScene(g.opts.Width, g.opts.Height, 0, 1),
		dir:   filepath.Join(g.opts.OutputDir, metadata.SceneDir(sceneIndex)),
	}
	g.logger.Infow("generating scene", "scene", sceneIndex)

	steps := []struct {
		stage Stage
		fn    func(context.Context, *sceneRun) error
	}{
		{StageBuildLayout, g.buildLayout},
		{StageAddLighting, g.addLighting},
		{StageScatterObjects, g.scatterObjects},
		{StagePlaceTarget, g.placeTarget},
		{StageWriteSceneMetadata, g.writeSceneMetadata},
		{StageRigCameras, g.rigCameras},
		{StageRenderEachCamera, g.renderEachCamera},
	}
	for _, step := range steps {
		if err := g.enter(ctx, run, step.stage); err != nil {
			return err
		}
		if err := step.fn(ctx, run); err != nil {
			return errors.Wrapf(err, "scene %d: %s", sceneIndex, step.stage)
		}
	}
	if err := g.enter(ctx, run, StageDone); err != nil {
		return err
	}

	g.logger.Infow("scene done",
		"scene", sceneIndex,
		"objects", len(run.scene.Objects()),
		"cameras", len(run.poses),
		"elapsed", time.Since(start).Round(time.Millisecond),
	)
	return nil
}

func (g *Generator) enter(ctx context.Context, run *sceneRun, next Stage) error {
	if next <= run.stage {
		return errors.Errorf("scene %d: stage %s after %s", run.index, next, run.stage)
	}
	if err := ctx.Err(); err != nil {
		return errors.Wrapf(err, "scene %d: before %s", run.index, next)
	}
	if g.opts.OnStage != nil {
		if err := g.opts.OnStage(run.index, next); err != nil {
			return errors.Wrapf(err, "scene %d: %s", run.index, next)
		}
	}
	run.stage = next
	g.logger.Debugw("stage", "scene", run.index, "stage", next.String())
	return nil
}

func (g *Generator) buildLayout(_ context.Context, run *sceneRun) error {
	d, err := warehouse.BuildLayout(run.scene, run.smp, g.cat.StructuralPool(), g.opts.Materials)
	run.dims = d
	return err
}

func (g *Generator) addLighting(_ context.Context, run *sceneRun) error {
	warehouse.AddLighting(run.scene, run.smp, run.dims)
	return nil
}

func (g *Generator) scatterObjects(_ context.Context, run *sceneRun) error {
	for _, category := range scatter.Order {
		r := g.opts.Ranges[category]
		n := run.smp.IntRange(r.Min, r.Max)
		if _, err := scatter.AddObjects(run.scene, run.smp, g.cat.Assets[category], n, scatter.Textures(g.cat, category), g.opts.Materials); err != nil {
			return errors.Wrap(err, category)
		}
	}
	return nil
}

func (g *Generator) placeTarget(_ context.Context, run *sceneRun) error {
	t, err := scatter.PlaceTarget(run.scene, run.smp, g.cat.Assets[catalog.Pallet], run.dims, g.cat.WoodPool(), g.opts.Materials)
	run.target = t
	return err
}

func (g *Generator) writeSceneMetadata(_ context.Context, run *sceneRun) error {
	if err := os.MkdirAll(run.dir, 0o755); err != nil {
		return errors.Wrap(err, "create scene dir")
	}
	return metadata.WriteScene(run.dir, metadata.NewScene(run.index, run.scene, run.dims))
}

func (g *Generator) rigCameras(_ context.Context, run *sceneRun) error {
	poses, err := camrig.Rig(run.target.Position, g.opts.NumAngles, g.opts.Distances, run.smp)
	run.poses = poses
	return err
}

func (g *Generator) renderEachCamera(ctx context.Context, run *sceneRun) error {
	for _, pose := range run.poses {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := g.capture(ctx, run, pose); err != nil {
			return errors.Wrapf(err, "camera %d", pose.Index)
		}
	}
	return nil
}

func (g *Generator) capture(ctx context.Context, run *sceneRun, pose camrig.Pose) error {
	cam := run.scene.Add(pose.Entity())
	if err := run.scene.SetCamera(cam); err != nil {
		return err
	}
	frame, err := g.renderer.Render(ctx, run.scene)
	if err != nil {
		return errors.Wrap(err, "render")
	}

	dir := filepath.Join(run.dir, metadata.CameraDir(pose.Index))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrap(err, "create camera dir")
	}
	if err := g.opts.Writer.WriteFrame(dir, frame); err != nil {
		return err
	}
	doc := metadata.NewCamera(run.index, pose.Index, cam, run.target)
	if err := metadata.WriteCamera(dir, doc); err != nil {
		return err
	}
	g.logger.Debugw("camera written",
		"scene", run.index,
		"camera", pose.Index,
		"angle", pose.Angle,
		"distance", pose.Distance,
		"focal_length", pose.FocalLength,
	)
	return nil
}
