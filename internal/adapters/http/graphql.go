package http

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"

	"github.com/samirrijal/weathermap/internal/core/domain"
	"github.com/samirrijal/weathermap/internal/core/usecases"
)

// buildSchema creates the GraphQL schema wired to our services.
func buildSchema(deps *Dependencies) (graphql.Schema, error) {
	coordType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Coordinate",
		Fields: graphql.Fields{
			"lat": &graphql.Field{Type: graphql.Float},
			"lng": &graphql.Field{Type: graphql.Float},
		},
	})

	mainType := graphql.NewObject(graphql.ObjectConfig{
		Name: "MainConditions",
		Fields: graphql.Fields{
			"temp":       &graphql.Field{Type: graphql.Float, Description: "Temperature in °C"},
			"feels_like": &graphql.Field{Type: graphql.Float},
			"temp_min":   &graphql.Field{Type: graphql.Float},
			"temp_max":   &graphql.Field{Type: graphql.Float},
			"pressure":   &graphql.Field{Type: graphql.Float},
			"humidity":   &graphql.Field{Type: graphql.Float, Description: "Relative humidity in %"},
		},
	})

	windType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Wind",
		Fields: graphql.Fields{
			"speed": &graphql.Field{Type: graphql.Float, Description: "Wind speed in m/s"},
			"deg":   &graphql.Field{Type: graphql.Float},
		},
	})

	conditionType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Condition",
		Fields: graphql.Fields{
			"id":          &graphql.Field{Type: graphql.Int},
			"main":        &graphql.Field{Type: graphql.String},
			"description": &graphql.Field{Type: graphql.String},
			"icon":        &graphql.Field{Type: graphql.String},
		},
	})

	observationType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Observation",
		Fields: graphql.Fields{
			"id":      &graphql.Field{Type: graphql.Int},
			"name":    &graphql.Field{Type: graphql.String},
			"coord":   &graphql.Field{Type: coordType},
			"main":    &graphql.Field{Type: mainType},
			"wind":    &graphql.Field{Type: windType},
			"dt":      &graphql.Field{Type: graphql.Int},
			"weather": &graphql.Field{Type: graphql.NewList(conditionType)},
			"title": &graphql.Field{
				Type:        graphql.String,
				Description: "Marker title: city and condition",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					obs := p.Source.(domain.Observation)
					return usecases.NewMarker(obs).Title, nil
				},
			},
			"icon_url": &graphql.Field{
				Type:        graphql.String,
				Description: "Condition icon at 2x resolution",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					obs := p.Source.(domain.Observation)
					cond, _ := obs.PrimaryCondition()
					return domain.IconURL(cond.Icon), nil
				},
			},
			"wind_kmh": &graphql.Field{
				Type:        graphql.Float,
				Description: "Wind speed in km/h",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return p.Source.(domain.Observation).Wind.Speed * 3.6, nil
				},
			},
		},
	})

	nearbyType := graphql.NewObject(graphql.ObjectConfig{
		Name: "NearbyObservation",
		Fields: graphql.Fields{
			"observation": &graphql.Field{
				Type: observationType,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return p.Source.(domain.NearbyObservation).Observation, nil
				},
			},
			"distance_m": &graphql.Field{Type: graphql.Float},
		},
	})

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"observations": &graphql.Field{
				Type:        graphql.NewList(observationType),
				Description: "Weather observations inside a bounding box (w,s,e,n)",
				Args: graphql.FieldConfigArgument{
					"bbox": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					bbox, err := domain.ParseBoundingBox(p.Args["bbox"].(string))
					if err != nil {
						return nil, err
					}
					return deps.Weather.Fetch(p.Context, bbox)
				},
			},
			"observationsNear": &graphql.Field{
				Type:        graphql.NewList(nearbyType),
				Description: "Weather observations within a radius of a point, closest first",
				Args: graphql.FieldConfigArgument{
					"lat":    &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"lng":    &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"radius": &graphql.ArgumentConfig{Type: graphql.Float, DefaultValue: 10000.0},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					center := domain.Coordinate{
						Latitude:  p.Args["lat"].(float64),
						Longitude: p.Args["lng"].(float64),
					}
					radius := p.Args["radius"].(float64)
					if radius <= 0 || radius > maxNearRadius {
						return nil, fmt.Errorf("radius must be between 1 and %.0f meters", maxNearRadius)
					}
					return deps.Weather.Near(p.Context, center, radius)
				},
			},
			"provider": &graphql.Field{
				Type:        graphql.String,
				Description: "Name of the weather provider",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Weather.ProviderName(), nil
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query: queryType,
	})
}

// GraphQLHandler serves the GraphQL endpoint.
func GraphQLHandler(deps *Dependencies) fiber.Handler {
	schema, err := buildSchema(deps)
	if err != nil {
		// This would be a programming error in the schema definition
		panic("graphql schema build: " + err.Error())
	}

	type gqlRequest struct {
		Query         string                 `json:"query"`
		OperationName string                 `json:"operationName"`
		Variables     map[string]interface{} `json:"variables"`
	}

	return func(c *fiber.Ctx) error {
		var req gqlRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}

		result := graphql.Do(graphql.Params{
			Schema:         schema,
			RequestString:  req.Query,
			VariableValues: req.Variables,
			OperationName:  req.OperationName,
			Context:        c.UserContext(),
		})

		return c.JSON(result)
	}
}
