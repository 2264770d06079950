package collision

import (
	log "github.com/sirupsen/logrus"

	"scenequery/internal/physics"
)

// sceneReadLock holds a scene's read lock until Release. The zero value holds nothing.
type sceneReadLock struct {
	scene *physics.Scene
}

func lockSceneRead(scene *physics.Scene) sceneReadLock {
	if scene != nil {
		scene.LockRead()
	}
	return sceneReadLock{scene: scene}
}

// Release unlocks once; later calls do nothing.
func (l *sceneReadLock) Release() {
	if l.scene != nil {
		l.scene.UnlockRead()
		l.scene = nil
	}
}

// planPairLock picks the single scene to lock for an operation touching two
// actors. Two distinct scenes cannot be locked in a safe order, so that case
// returns no scene and conflict.
func planPairLock(a, b *physics.Scene) (scene *physics.Scene, conflict bool) {
	switch {
	case a == nil:
		return b, false
	case b == nil, a == b:
		return a, false
	}
	return nil, true
}

// lockScenePair read-locks the scene shared by a and b. On conflict it warns
// once and returns an empty lock; the caller proceeds without consistency.
func lockScenePair(a, b *physics.Scene, diag *Diagnostics) (sceneReadLock, bool) {
	scene, conflict := planPairLock(a, b)
	if conflict {
		diag.Once(CategoryPairLockConflict, log.Fields{"first": a.Name, "second": b.Name},
			"Collision: actors live in different scenes, skipping pair lock")
		return sceneReadLock{}, false
	}
	return lockSceneRead(scene), true
}
