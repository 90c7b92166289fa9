package utils

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/pedago-dev/portal/internal/access"
	"github.com/pedago-dev/portal/internal/types"
)

func GetCurrentActor(ctx *gin.Context) (access.Actor, error) {
	value, exists := ctx.Get(types.ContextActorKey)

	if !exists {
		return access.Actor{}, fmt.Errorf("User not authenticated")
	}

	actor, ok := value.(access.Actor)

	if !ok {
		return access.Actor{}, fmt.Errorf("Invalid actor type in context")
	}

	return actor, nil
}
