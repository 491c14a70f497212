package middleware

import (
	"context"
	"time"

	apperror "estoque/internal/errors"
	"estoque/internal/pkg/logger"
)

// LoggingMiddleware registra início, duração e resultado de cada comando.
func LoggingMiddleware(log logger.Logger, name string) func(next Command) Command {
	return func(next Command) Command {
		return func(ctx context.Context, args []string) error {
			start := time.Now()
			fields := map[string]interface{}{"comando": name}
			if actor, ok := GetActorFromContext(ctx); ok {
				fields["usuario"] = actor.Username
			}
			log.Debug("Comando iniciado.", fields)

			err := next(ctx, args)

			fields["duracao_ms"] = time.Since(start).Milliseconds()
			if err != nil {
				code, category, _ := apperror.MapToExitCode(err)
				fields["categoria"] = category
				fields["codigo_saida"] = code
				log.Info("Comando encerrado com erro.", fields)
				return err
			}
			log.Info("Comando concluído.", fields)
			return nil
		}
	}
}
