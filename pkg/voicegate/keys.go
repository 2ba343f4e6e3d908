package voicegate

import "github.com/echoos/voicegate/pkg/kv"

// KV key layout for the voicegate package.
//
// Two independent persisted collections share one store under the "vp"
// root:
//
//	vp/profile/{username}        → msgpack profileRecord
//	vp/session/{username}/{id}   → msgpack sessionRecord
//
// Sessions are keyed under their username so that logout and user removal
// can cascade with a single prefix scan. Failed-attempt records are
// in-memory only and have no keys here.

func profileKey(username string) kv.Key {
	return kv.Key{"vp", "profile", username}
}

func profilePrefix() kv.Key {
	return kv.Key{"vp", "profile"}
}

func sessionKey(username, id string) kv.Key {
	return kv.Key{"vp", "session", username, id}
}

func sessionPrefix() kv.Key {
	return kv.Key{"vp", "session"}
}
