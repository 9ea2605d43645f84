// Package logger provides a small factory around log/slog plus typed
// attribute helpers shared by the notifyq packages.
//
// The factory keeps configuration minimal: output format (text for
// development, JSON for aggregation), level, destination and static
// attributes attached to every record.
//
//	log := logger.New(
//	    logger.WithFormat(logger.FormatText),
//	    logger.WithLevel(slog.LevelDebug),
//	    logger.WithAttr(slog.String("service", "notifier")),
//	)
//
// The attribute helpers keep log keys consistent across packages:
//
//	log.LogAttrs(ctx, slog.LevelWarn, "delivery failed",
//	    logger.NotificationID(id),
//	    logger.Channel(ch),
//	    logger.Error(err),
//	)
package logger
