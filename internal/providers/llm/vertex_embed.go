package llm

import (
	"context"
	"errors"
	"fmt"

	aiplatform "cloud.google.com/go/aiplatform/apiv1"
	aiplatformpb "cloud.google.com/go/aiplatform/apiv1/aiplatformpb"
	"google.golang.org/api/option"
	"google.golang.org/protobuf/types/known/structpb"
)

// VertexEmbedder produces text embeddings for transcript entries via the
// Vertex prediction API. The default model emits 768-dimensional vectors,
// matching the transcript schema.
type VertexEmbedder struct {
	c        *aiplatform.PredictionClient
	endpoint string
}

func NewVertexEmbedder(ctx context.Context, projectID, location, modelName string) (*VertexEmbedder, error) {
	if modelName == "" {
		modelName = "text-embedding-004"
	}
	c, err := aiplatform.NewPredictionClient(ctx,
		option.WithEndpoint(location+"-aiplatform.googleapis.com:443"))
	if err != nil {
		return nil, err
	}
	return &VertexEmbedder{
		c: c,
		endpoint: fmt.Sprintf("projects/%s/locations/%s/publishers/google/models/%s",
			projectID, location, modelName),
	}, nil
}

func (e *VertexEmbedder) Close() error { return e.c.Close() }

func (e *VertexEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	instance, err := structpb.NewValue(map[string]any{
		"content":   text,
		"task_type": "RETRIEVAL_DOCUMENT",
	})
	if err != nil {
		return nil, err
	}

	resp, err := e.c.Predict(ctx, &aiplatformpb.PredictRequest{
		Endpoint:  e.endpoint,
		Instances: []*structpb.Value{instance},
	})
	if err != nil {
		return nil, err
	}
	if len(resp.Predictions) == 0 {
		return nil, errors.New("embedding prediction returned no results")
	}

	values := resp.Predictions[0].GetStructValue().
		GetFields()["embeddings"].GetStructValue().
		GetFields()["values"].GetListValue().GetValues()
	if len(values) == 0 {
		return nil, errors.New("embedding prediction is malformed")
	}

	out := make([]float32, 0, len(values))
	for _, v := range values {
		out = append(out, float32(v.GetNumberValue()))
	}
	return out, nil
}
