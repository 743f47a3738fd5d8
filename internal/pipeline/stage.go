package pipeline

// Stage is a step of scene generation. Stages run strictly in order.
type Stage int

const (
	StageInit Stage = iota
	StageBuildLayout
	StageAddLighting
	StageScatterObjects
	StagePlaceTarget
	StageWriteSceneMetadata
	StageRigCameras
	StageRenderEachCamera
	StageDone
)

var stageNames = [...]string{
	StageInit:               "init",
	StageBuildLayout:        "build_layout",
	StageAddLighting:        "add_lighting",
	StageScatterObjects:     "scatter_objects",
	StagePlaceTarget:        "place_target",
	StageWriteSceneMetadata: "write_scene_metadata",
	StageRigCameras:         "rig_cameras",
	StageRenderEachCamera:   "render_each_camera",
	StageDone:               "done",
}

func (s Stage) String() string {
	if s < 0 || int(s) >= len(stageNames) {
		return "unknown"
	}
	return stageNames[s]
}
