package localstore

import "context"

type profileKey struct{}

func WithProfile(ctx context.Context, profile Profile) context.Context {
	return context.WithValue(ctx, profileKey{}, profile)
}

// ProfileFrom returns the profile attached by the profile middleware.
func ProfileFrom(ctx context.Context) (Profile, bool) {
	profile, ok := ctx.Value(profileKey{}).(Profile)
	return profile, ok
}
