// Package neo4j projects petition routing into a graph of petitions, departments and categories.
package neo4j

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/grievease/petition-triage/internal/core/domain"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

var schemaStatements = []string{
	`CREATE CONSTRAINT petition_id_unique IF NOT EXISTS FOR (p:Petition) REQUIRE p.id IS UNIQUE`,
	`CREATE CONSTRAINT department_id_unique IF NOT EXISTS FOR (d:Department) REQUIRE d.id IS UNIQUE`,
	`CREATE CONSTRAINT category_id_unique IF NOT EXISTS FOR (c:Category) REQUIRE c.id IS UNIQUE`,
	`CREATE INDEX petition_urgency_idx IF NOT EXISTS FOR (p:Petition) ON (p.urgency)`,
}

// A petition has exactly one ROUTED_TO edge and at most one FILED_UNDER edge.
const projectPetitionCypher = `
MERGE (p:Petition {id: $petitionID})
SET p.title = $title,
    p.urgency = $urgency,
    p.confidence = $confidence,
    p.manually_classified = $manual,
    p.updated_at = datetime($occurredAt)
WITH p
OPTIONAL MATCH (p)-[old:ROUTED_TO|FILED_UNDER]->()
DELETE old
WITH DISTINCT p
MERGE (d:Department {id: $departmentID})
SET d.name = $department
MERGE (p)-[:ROUTED_TO]->(d)
FOREACH (_ IN CASE WHEN $categoryID IS NULL THEN [] ELSE [1] END |
  MERGE (c:Category {id: $categoryID})
  SET c.name = $category
  MERGE (c)-[:BELONGS_TO]->(d)
  MERGE (p)-[:FILED_UNDER]->(c)
)`

type Graph struct {
	driver   neo4j.DriverWithContext
	database string
	logger   *slog.Logger
}

// Connect opens a driver and verifies connectivity. Empty credentials mean no auth.
func Connect(ctx context.Context, url, username, password, database string, logger *slog.Logger) (*Graph, error) {
	auth := neo4j.NoAuth()
	if username != "" && password != "" {
		auth = neo4j.BasicAuth(username, password, "")
	}
	driver, err := neo4j.NewDriverWithContext(url, auth)
	if err != nil {
		return nil, fmt.Errorf("create neo4j driver: %w", err)
	}
	if err := driver.VerifyConnectivity(ctx); err != nil {
		_ = driver.Close(ctx)
		return nil, domain.WrapError(domain.ErrTemporary, "verify neo4j connectivity", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Graph{driver: driver, database: database, logger: logger}, nil
}

func (g *Graph) Close(ctx context.Context) error {
	return g.driver.Close(ctx)
}

func (g *Graph) EnsureSchema(ctx context.Context) error {
	session := g.driver.NewSession(ctx, neo4j.SessionConfig{DatabaseName: g.database, AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	for _, stmt := range schemaStatements {
		if _, err := session.Run(ctx, stmt, nil); err != nil {
			return fmt.Errorf("neo4j schema %q: %w", stmt, err)
		}
	}
	return nil
}

func (g *Graph) ProjectPetition(ctx context.Context, event domain.PetitionEvent) error {
	session := g.driver.NewSession(ctx, neo4j.SessionConfig{DatabaseName: g.database, AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		result, err := tx.Run(ctx, projectPetitionCypher, projectionParams(event))
		if err != nil {
			return nil, err
		}
		return result.Consume(ctx)
	})
	if err != nil {
		if neo4j.IsRetryable(err) {
			return domain.WrapError(domain.ErrTemporary, "neo4j project petition", err)
		}
		return fmt.Errorf("neo4j project petition %d: %w", event.PetitionID, err)
	}
	g.logger.Debug("petition_projected", "petition_id", event.PetitionID, "department_id", event.DepartmentID)
	return nil
}

func projectionParams(event domain.PetitionEvent) map[string]any {
	params := map[string]any{
		"petitionID":   event.PetitionID,
		"title":        event.Title,
		"urgency":      string(event.UrgencyLevel),
		"confidence":   int64(event.Confidence),
		"manual":       event.ManuallyClassified,
		"occurredAt":   event.OccurredAt.UTC().Format("2006-01-02T15:04:05.000Z"),
		"departmentID": event.DepartmentID,
		"department":   event.Department,
		"categoryID":   nil,
		"category":     nil,
	}
	if event.CategoryID != nil {
		params["categoryID"] = *event.CategoryID
		if event.Category != nil {
			params["category"] = *event.Category
		}
	}
	return params
}
