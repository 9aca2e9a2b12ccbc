package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/sanctyr/site/config"
	"github.com/sanctyr/site/internal/models"
	"github.com/sanctyr/site/pkg/discordapi"
	logger "github.com/sanctyr/site/middleware/log"
)

func rolesFromPositions(positions []int) []models.GuildRole {
	roles := make([]models.GuildRole, len(positions))
	for i, p := range positions {
		roles[i] = models.GuildRole{
			ID:       "r" + strconv.Itoa(i),
			Name:     "Role " + strconv.Itoa(i),
			Position: p,
		}
	}
	return roles
}

func TestGetGuildRoles_AlwaysSorted(t *testing.T) {
	var served []models.GuildRole
	mux := http.NewServeMux()
	mux.HandleFunc("/guilds/"+testGuildID+"/roles", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, served)
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	api := discordapi.NewClient("token", logger.NewNop(), discordapi.WithBaseURL(server.URL))
	s := NewGuildService(api, &config.DiscordConfig{GuildID: testGuildID}, logger.NewNop())

	properties := gopter.NewProperties(nil)
	properties.Property("every adjacent pair is non-increasing by position", prop.ForAll(
		func(positions []int) bool {
			served = rolesFromPositions(positions)
			roles, err := s.GetGuildRoles(context.Background())
			if err != nil || len(roles) != len(positions) {
				return false
			}
			for i := 1; i < len(roles); i++ {
				if roles[i-1].Position < roles[i].Position {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.IntRange(-100, 100)),
	))
	properties.TestingRun(t)
}

func TestHighestRole_MatchesBruteForce(t *testing.T) {
	properties := gopter.NewProperties(nil)
	properties.Property("picks the maximum position among held roles", prop.ForAll(
		func(positions []int, held []bool) bool {
			sorted := rolesFromPositions(positions)
			sortRolesByPosition(sorted)

			heldIDs := make([]string, 0, len(positions))
			for i := range positions {
				if i < len(held) && held[i] {
					heldIDs = append(heldIDs, "r"+strconv.Itoa(i))
				}
			}
			got := HighestRole(sorted, heldIDs)

			heldSet := make(map[string]bool, len(heldIDs))
			for _, id := range heldIDs {
				heldSet[id] = true
			}
			var want *models.GuildRole
			for i := range sorted {
				if heldSet[sorted[i].ID] {
					want = &sorted[i]
					break
				}
			}
			if want == nil {
				return got == nil
			}
			return got != nil && got.Position == want.Position
		},
		gen.SliceOf(gen.IntRange(0, 50)),
		gen.SliceOf(gen.Bool()),
	))
	properties.TestingRun(t)
}
