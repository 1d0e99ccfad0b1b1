package app

import (
	"time"

	"emberline/internal/errs"
	"emberline/internal/feature"
	"emberline/internal/scripting"
)

// baseFeatureSet is the engine's root feature set: it owns the native
// method table the scripting runtime binds against. Registered under
// "base" and imported during StartApp.
type baseFeatureSet struct {
	app    *App
	module *scripting.Module
}

func (b *baseFeatureSet) Name() string { return "base" }

func (b *baseFeatureSet) OnImport() {
	b.module = scripting.NewModule("_base")
	b.module.AddMethods(
		scripting.MethodDef{
			Name: "pushcall",
			Doc:  "pushcall(call) -> schedule a call on the logic loop",
			Fn: func(args ...any) (any, error) {
				call, ok := args[0].(scripting.Callable)
				if !ok {
					return nil, errs.Newf(errs.KindType,
						"pushcall argument is %T, expected a callable", args[0])
				}
				return nil, scripting.PushCall(b.app.Logic, call,
					boolArg(args, 1), boolArg(args, 2), boolArg(args, 3), boolArg(args, 4))
			},
		},
		scripting.MethodDef{
			Name: "screenmessage",
			Doc:  "screenmessage(msg) -> show a message to the user",
			Fn: func(args ...any) (any, error) {
				msg, ok := args[0].(string)
				if !ok {
					return nil, errs.Newf(errs.KindType,
						"screenmessage argument is %T, expected a string", args[0])
				}
				b.app.ScreenMessage(msg)
				return nil, nil
			},
		},
		scripting.MethodDef{
			Name: "apptimer",
			Doc:  "apptimer(millisecs, repeat, call) -> timer id",
			Fn: func(args ...any) (any, error) {
				millis, ok := args[0].(int)
				if !ok || millis < 0 {
					return nil, errs.New(errs.KindValue,
						"apptimer length must be a non-negative millisecond count")
				}
				repeat := boolArg(args, 1)
				if repeat && millis == 0 {
					return nil, errs.New(errs.KindValue,
						"repeating apptimer length must be at least one millisecond")
				}
				call, ok := args[2].(scripting.Callable)
				if !ok {
					return nil, errs.Newf(errs.KindType,
						"apptimer callback is %T, expected a callable", args[2])
				}
				return b.app.Logic.NewAppTimer(
					time.Duration(millis)*time.Millisecond, repeat, call), nil
			},
		},
		scripting.MethodDef{
			Name: "quit",
			Doc:  "quit() -> request an orderly shutdown",
			Fn: func(args ...any) (any, error) {
				b.app.Logic.RequestShutdown()
				return nil, nil
			},
		},
	)
}

// Module returns the native method table, nil before import.
func (b *baseFeatureSet) Module() *scripting.Module { return b.module }

func boolArg(args []any, i int) bool {
	if i < len(args) {
		if v, ok := args[i].(bool); ok {
			return v
		}
	}
	return false
}

// importBase registers (first app in the process only) and imports the
// base feature set. The registry is process-global, matching the
// one-app-per-process rule StartApp enforces.
func (a *App) importBase() *baseFeatureSet {
	if !feature.IsRegistered("base") {
		feature.Register("base", func() feature.Set {
			return &baseFeatureSet{app: a}
		})
	}
	b := feature.MustImport("base").(*baseFeatureSet)
	b.app = a
	return b
}
