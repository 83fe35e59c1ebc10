package app

import (
	"log/slog"

	"github.com/chewxy/math32"

	"vr-scene/config"
	"vr-scene/core"
	"vr-scene/math"
	"vr-scene/scene"
)

const (
	DefaultRotationSpeed = 0.0003 // rad/ms
	DefaultMaxPixelRatio = 2

	cameraFOV  = 75 * math32.Pi / 180
	cameraNear = 0.1
	cameraFar  = 1000

	lightColor     = 0xffaa00
	lightIntensity = 6

	sphereDisplacement = 0.6
)

// ModelLoader starts an asynchronous model load. *loader.Loader
// implements it.
type ModelLoader interface {
	LoadModel(path string, position math.Vec3, scale float32, target *scene.Node, startAnimation bool)
}

// World is the result of BuildScene.
type World struct {
	Scene    *scene.Scene
	Camera   *scene.Camera
	Ground   *scene.Node
	Sphere   *scene.Node
	Rotating []*scene.Node
}

// BuildScene composes the scene once at startup: camera, lights, skybox,
// textured ground and sphere, and the configured models. Texture and
// skybox failures are logged and leave the affected map unset. Models
// arrive later through models.
func BuildScene(cfg config.Config, models ModelLoader, aspect float32, logger *slog.Logger) *World {
	if logger == nil {
		logger = slog.Default()
	}
	assets := cfg.Assets
	s := scene.NewScene()

	ground := scene.NewMeshNode("ground", scene.CreatePlane(10, 10, 1))
	ground.Mesh.Material = texturedMaterial("ground", assets, assets.Ground, logger)
	ground.ReceiveShadow = true
	s.AddNode(ground)

	sphere := scene.NewMeshNode("sphere", scene.CreateSphere(1, 32, 16))
	sphere.Mesh.Material = texturedMaterial("sphere", assets, assets.Sphere, logger)
	sphere.Mesh.Material.DisplacementScale = sphereDisplacement
	sphere.SetPosition(math.NewVec3(0.5, 1, -3))
	sphere.SetScale(math.Splat(0.8))
	sphere.CastShadow = true
	s.AddNode(sphere)

	for _, pos := range []math.Vec3{
		math.NewVec3(-0.6, 3.5, -2),
		math.NewVec3(2.5, 2.5, -1.5),
	} {
		light := scene.NewPointLight(lightColor, lightIntensity, pos)
		light.CastShadow = cfg.Scene.Shadows
		s.AddLight(light)
	}

	if faces, ok := assets.SkyboxFaces(); ok {
		for i := range faces {
			faces[i] = assets.Resolve(faces[i])
		}
		sky, err := scene.LoadCubeMap(faces)
		if err != nil {
			logger.Error("skybox unavailable", "err", err)
		} else {
			s.Background = sky
		}
	}

	if cfg.Scene.Grid {
		grid := scene.NewMeshNode("grid", scene.CreateGrid(10, 10,
			core.Color{R: 0.3, G: 0.3, B: 0.3, A: 1}, core.Color{R: 0.6, G: 0.6, B: 0.6, A: 1}))
		grid.Mesh.Material = scene.NewLineMaterial("grid")
		grid.SetPosition(math.NewVec3(0, 0.001, 0))
		s.AddNode(grid)
	}

	camera := scene.NewCamera(cameraFOV, aspect, cameraNear, cameraFar)
	camera.SetPosition(math.NewVec3(0, 4, 5))
	camera.LookAt(ground.Transform.Position)

	if models != nil {
		for _, m := range assets.Models {
			pos := math.Vec3FromArray(m.Position)
			models.LoadModel(m.Path, pos, m.Scale, s.Root, m.Animate)
		}
	}

	return &World{
		Scene:    s,
		Camera:   camera,
		Ground:   ground,
		Sphere:   sphere,
		Rotating: []*scene.Node{sphere},
	}
}

// texturedMaterial loads the maps of set in parallel. The AO entry is an
// ARM texture: occlusion in R, roughness in G and metalness in B.
func texturedMaterial(name string, assets config.AssetsConfig, set config.TextureSet, logger *slog.Logger) *scene.Material {
	paths := []string{
		assets.Resolve(set.Albedo),
		assets.Resolve(set.Normal),
		assets.Resolve(set.Roughness),
		assets.Resolve(set.AO),
		assets.Resolve(set.Displacement),
	}
	textures, errs := scene.LoadTextures(paths, assets.MaxTextureSize)
	for i, err := range errs {
		if err != nil {
			logger.Error("texture unavailable", "material", name, "path", paths[i], "err", err)
		}
	}

	m := scene.NewStandardMaterial(name)
	if albedo := textures[0]; albedo != nil {
		albedo.SRGB = true
		m.AlbedoMap = albedo
	}
	m.NormalMap = textures[1]
	m.RoughnessMap = textures[2]
	if arm := textures[3]; arm != nil {
		m.AOMap = arm
		if m.RoughnessMap == nil {
			m.RoughnessMap = arm
		}
	}
	m.DisplacementMap = textures[4]
	return m
}
