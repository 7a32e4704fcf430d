package schema

// AnimationInfo is the .png.mcmeta file of an animated texture.
type AnimationInfo struct {
	Animation Animation `json:"animation"`
}

// Animation holds the ticks per frame (1 tick = 1/20 s).
type Animation struct {
	Frametime uint32 `json:"frametime"`
}

func NewAnimationInfo(frametime uint32) *AnimationInfo {
	return &AnimationInfo{Animation: Animation{Frametime: frametime}}
}
