// Package logger builds *slog.Logger instances for the portal services.
//
// New applies functional options (format, level, static attributes, context
// extractors) and wraps the selected handler with LogHandlerDecorator so
// request-scoped values such as the request id are attached to every record
// logged with a context.
//
//	log := logger.New(
//	    logger.WithEnvironment(cfg.AppEnv, "portal"),
//	    logger.WithContextValue("request_id", requestIDKey{}),
//	)
//	log.InfoContext(ctx, "access resolved",
//	    logger.UserID(userID),
//	    logger.AccessState("allowed"),
//	)
//
// The attribute helpers in attr.go keep key names consistent. Helpers that
// take optional values return an empty slog.Attr, which slog drops.
package logger
