package render

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/taigrr/lambert/pkg/models"
)

// Scene is a mesh and its optional diffuse texture.
type Scene struct {
	Mesh    *models.Mesh
	Texture *Texture
}

// LoadScene loads a model and a texture concurrently. texturePath may be
// empty; a glTF model then supplies its embedded image, if any. Either
// failure is returned and no scene is produced.
func LoadScene(ctx context.Context, modelPath, texturePath string) (*Scene, error) {
	var scene Scene
	g, ctx := errgroup.WithContext(ctx)

	embedded := texturePath == "" && isGLTF(modelPath)

	g.Go(func() error {
		if embedded {
			mesh, img, err := models.LoadGLBWithTexture(modelPath)
			if err != nil {
				return fmt.Errorf("load model: %w", err)
			}
			scene.Mesh = mesh
			if img != nil {
				scene.Texture = TextureFromImage(img)
			}
			return nil
		}

		mesh, err := models.Load(modelPath)
		if err != nil {
			return fmt.Errorf("load model: %w", err)
		}
		scene.Mesh = mesh
		return nil
	})

	if texturePath != "" {
		g.Go(func() error {
			tex, err := LoadTexture(texturePath)
			if err != nil {
				return fmt.Errorf("load texture: %w", err)
			}
			scene.Texture = tex
			return ctx.Err()
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	Logger().Info("scene loaded", "model", modelPath,
		"vertices", scene.Mesh.VertexCount(), "faces", scene.Mesh.TriangleCount(),
		"textured", scene.Texture != nil)
	return &scene, nil
}

func isGLTF(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".glb" || ext == ".gltf"
}
