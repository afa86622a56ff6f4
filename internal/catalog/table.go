package catalog

// Attribute paths observed on doorbells, stickup cams, floodlights and
// chimes, grouped by category. CV detection entries are generated in
// cvDetectionSensors.

var healthSensors = []Description{
	{Key: "rssi", Category: CategoryHealth, Path: "health.rssi", Unit: UnitDBm},
	{Key: "rssi_category", Category: CategoryHealth, Path: "health.rssi_category"},
	{Key: "connected", Category: CategoryHealth, Path: "health.connected"},
	{Key: "packet_loss", Category: CategoryHealth, Path: "health.packet_loss", Unit: UnitPercent},
	{Key: "packet_loss_category", Category: CategoryHealth, Path: "health.packet_loss_category"},
	{Key: "bandwidth", Category: CategoryHealth, Path: "health.bandwidth", Unit: UnitKilobitsPerSecond},
	{Key: "current_bandwidth_mb", Category: CategoryHealth, Path: "health.current_bandwidth_mb", Unit: UnitMegabitsPerSecond},
	{Key: "egress_tx_rate", Category: CategoryHealth, Path: "health.egress_tx_rate", Unit: UnitMegabitsPerSecond, Coerce: CoerceFloat},
	{Key: "egress_tx_rate_category", Category: CategoryHealth, Path: "health.egress_tx_rate_category"},
	{Key: "wifi_channel", Category: CategoryHealth, Path: "health.channel"},
	{Key: "network_connection_value", Category: CategoryHealth, Path: "health.network_connection_value"},
	{Key: "sidewalk_connection", Category: CategoryHealth, Path: "health.sidewalk_connection"},
	{Key: "uptime_sec", Category: CategoryHealth, Path: "health.uptime_sec", Unit: UnitSeconds},
	{Key: "uptime_formatted", Category: CategoryHealth, Path: "health.uptime_sec", Coerce: CoerceUptime},
	{Key: "last_update_time", Category: CategoryHealth, Path: "health.last_update_time", Coerce: CoerceUnixTime},
	{Key: "wifi_is_ring_network", Category: CategoryHealth, Path: "health.wifi_is_ring_network"},
}

var powerSensors = []Description{
	{Key: "battery_percentage", Category: CategoryPower, Path: "health.battery_percentage", Unit: UnitPercent},
	{Key: "battery_percentage_category", Category: CategoryPower, Path: "health.battery_percentage_category"},
	{Key: "battery_voltage", Category: CategoryPower, Path: "health.battery_voltage", Unit: UnitMillivolts},
	{Key: "battery_voltage_category", Category: CategoryPower, Path: "health.battery_voltage_category"},
	{Key: "battery_present", Category: CategoryPower, Path: "health.battery_present"},
	{Key: "battery_save", Category: CategoryPower, Path: "health.battery_save"},
	{Key: "battery_error", Category: CategoryPower, Path: "health.battery_error"},
	{Key: "ac_power", Category: CategoryPower, Path: "health.ac_power", Coerce: CoerceBoolFromInt},
	{Key: "transformer_voltage", Category: CategoryPower, Path: "health.transformer_voltage", Unit: UnitVolts},
	{Key: "transformer_voltage_category", Category: CategoryPower, Path: "health.transformer_voltage_category"},
	{Key: "ext_power_state", Category: CategoryPower, Path: "health.ext_power_state"},
	{Key: "run_mode", Category: CategoryPower, Path: "health.run_mode"},
	{Key: "pref_run_mode", Category: CategoryPower, Path: "health.pref_run_mode"},
}

var firmwareSensors = []Description{
	{Key: "firmware_version", Category: CategoryFirmware, Path: "health.firmware_version"},
	{Key: "firmware_version_status", Category: CategoryFirmware, Path: "health.firmware_version_status"},
	{Key: "ota_status", Category: CategoryFirmware, Path: "health.ota_status"},
	{Key: "firmware_avg_bitrate", Category: CategoryFirmware, Path: "health.firmware_avg_bitrate", Unit: UnitKilobitsPerSecond, Coerce: CoerceInt},
}

var videoSensors = []Description{
	{Key: "vod_enabled", Category: CategoryVideo, Path: "health.vod_enabled"},
	{Key: "vod_status", Category: CategoryVideo, Path: "settings.vod_status"},
	{Key: "vod_suspended", Category: CategoryVideo, Path: "settings.vod_suspended"},
	{Key: "stream_resolution", Category: CategoryVideo, Path: "health.stream_resolution"},
	{Key: "live_view_preset_profile", Category: CategoryVideo, Path: "settings.live_view_preset_profile"},
	{Key: "live_view_disabled", Category: CategoryVideo, Path: "settings.live_view_disabled"},
	{Key: "extended_live_view", Category: CategoryVideo, Path: "settings.extended_live_view"},
	{Key: "exposure_control", Category: CategoryVideo, Path: "settings.exposure_control"},
	{Key: "preroll_enabled", Category: CategoryVideo, Path: "settings.preroll_enabled"},
	{Key: "max_resolution_mode", Category: CategoryVideo, Path: "settings.max_resolution_mode"},
	{Key: "encryption_enabled", Category: CategoryVideo, Path: "settings.video_settings.encryption_enabled"},
	{Key: "hevc_enabled", Category: CategoryVideo, Path: "settings.video_settings.hevc_enabled"},
	{Key: "max_digital_zoom_level", Category: CategoryVideo, Path: "features.video_rendering.max_digital_zoom_level"},
}

var audioSensors = []Description{
	{Key: "enable_audio_recording", Category: CategoryAudio, Path: "settings.enable_audio_recording"},
	{Key: "doorbell_volume", Category: CategoryAudio, Path: "settings.doorbell_volume"},
	{Key: "voice_volume", Category: CategoryAudio, Path: "settings.voice_volume"},
	{Key: "chime_enable", Category: CategoryAudio, Path: "settings.chime_settings.enable"},
	{Key: "chime_duration", Category: CategoryAudio, Path: "settings.chime_settings.duration", Unit: UnitSeconds},
}

var motionSensors = []Description{
	{Key: "motion_detection_enabled", Category: CategoryMotion, Path: "settings.motion_detection_enabled"},
	{Key: "advanced_motion_detection_enabled", Category: CategoryMotion, Path: "settings.advanced_motion_detection_enabled"},
	{Key: "advanced_motion_detection_human_only_mode", Category: CategoryMotion, Path: "settings.advanced_motion_detection_human_only_mode"},
	{Key: "people_detection_eligible", Category: CategoryMotion, Path: "settings.people_detection_eligible"},
	{Key: "motion_snooze_preset_profile", Category: CategoryMotion, Path: "settings.motion_snooze_preset_profile"},
	{Key: "loitering_threshold", Category: CategoryMotion, Path: "settings.loitering_threshold", Unit: UnitSeconds},
	{Key: "advanced_motion_zones_enabled", Category: CategoryMotion, Path: "settings.advanced_motion_zones_enabled"},
	{Key: "pir_sensitivity_1", Category: CategoryMotion, Path: "settings.pir_sensitivity_1"},
}

var cvThresholdSensors = []Description{
	{Key: "cv_threshold_loitering", Category: CategoryCVDetection, Path: "settings.cv_settings.threshold.loitering", Unit: UnitSeconds},
	{Key: "cv_threshold_package_delivery", Category: CategoryCVDetection, Path: "settings.cv_settings.threshold.package_delivery", Unit: UnitSeconds},
	{Key: "natural_language_search_enabled", Category: CategoryCVDetection, Path: "settings.cv_settings.search_types.natural_language_search.enabled"},
}

var cvPaidSensors = []Description{
	{Key: "paid_human", Category: CategoryCVPaid, Path: "settings.cv_paid_features.human"},
	{Key: "paid_motion", Category: CategoryCVPaid, Path: "settings.cv_paid_features.motion"},
	{Key: "paid_other_motion", Category: CategoryCVPaid, Path: "settings.cv_paid_features.other_motion"},
	{Key: "paid_loitering", Category: CategoryCVPaid, Path: "settings.cv_paid_features.loitering"},
	{Key: "paid_vehicle", Category: CategoryCVPaid, Path: "settings.cv_paid_features.vehicle"},
	{Key: "paid_animal", Category: CategoryCVPaid, Path: "settings.cv_paid_features.animal"},
	{Key: "paid_package_delivery", Category: CategoryCVPaid, Path: "settings.cv_paid_features.package_delivery"},
	{Key: "paid_package_pickup", Category: CategoryCVPaid, Path: "settings.cv_paid_features.package_pickup"},
	{Key: "paid_baby_cry", Category: CategoryCVPaid, Path: "settings.cv_paid_features.baby_cry"},
	{Key: "paid_car_alarm", Category: CategoryCVPaid, Path: "settings.cv_paid_features.car_alarm"},
	{Key: "paid_co2_smoke_alarm", Category: CategoryCVPaid, Path: "settings.cv_paid_features.co2_smoke_alarm"},
	{Key: "paid_dog_bark", Category: CategoryCVPaid, Path: "settings.cv_paid_features.dog_bark"},
	{Key: "paid_glass_break", Category: CategoryCVPaid, Path: "settings.cv_paid_features.glass_break"},
	{Key: "paid_general_sound", Category: CategoryCVPaid, Path: "settings.cv_paid_features.general_sound"},
}

var otherPaidSensors = []Description{
	{Key: "paid_alexa_concierge", Category: CategoryOtherPaid, Path: "settings.other_paid_features.alexa_concierge"},
	{Key: "paid_sheila_cv", Category: CategoryOtherPaid, Path: "settings.other_paid_features.sheila_cv"},
	{Key: "paid_sheila_recording", Category: CategoryOtherPaid, Path: "settings.other_paid_features.sheila_recording"},
	{Key: "paid_extended_live_view", Category: CategoryOtherPaid, Path: "settings.other_paid_features.extended_live_view"},
	{Key: "paid_recording_24x7", Category: CategoryOtherPaid, Path: "settings.other_paid_features.recording_24x7"},
	{Key: "paid_natural_language_search", Category: CategoryOtherPaid, Path: "settings.other_paid_features.natural_language_search"},
	{Key: "paid_multicam_live_view", Category: CategoryOtherPaid, Path: "settings.other_paid_features.multicam_live_view"},
	{Key: "paid_daily_digest", Category: CategoryOtherPaid, Path: "settings.other_paid_features.daily_digest"},
	{Key: "paid_package_protection", Category: CategoryOtherPaid, Path: "settings.other_paid_features.package_protection"},
	{Key: "paid_critical_alerts", Category: CategoryOtherPaid, Path: "settings.other_paid_features.critical_alerts"},
}

var notificationSensors = []Description{
	{Key: "enable_rich_notifications", Category: CategoryNotifications, Path: "settings.enable_rich_notifications"},
	{Key: "rich_notifications_billing_eligible", Category: CategoryNotifications, Path: "settings.rich_notifications_billing_eligible"},
	{Key: "rich_notifications_face_crop_enabled", Category: CategoryNotifications, Path: "settings.rich_notifications_face_crop_enabled"},
	{Key: "rich_notifications_scene_source", Category: CategoryNotifications, Path: "settings.rich_notifications_scene_source"},
	{Key: "rich_notifications_eligible", Category: CategoryNotifications, Path: "features.rich_notifications_eligible"},
}

var recordingSensors = []Description{
	{Key: "user_specified_recording_ttl", Category: CategoryRecording, Path: "settings.user_specified_recording_ttl", Unit: UnitDays},
	{Key: "lite_24x7_subscribed", Category: CategoryRecording, Path: "settings.lite_24x7.subscribed"},
	{Key: "lite_24x7_enabled", Category: CategoryRecording, Path: "settings.lite_24x7.enabled"},
	{Key: "lite_24x7_frequency_secs", Category: CategoryRecording, Path: "settings.lite_24x7.frequency_secs", Unit: UnitSeconds},
	{Key: "lite_24x7_resolution_p", Category: CategoryRecording, Path: "settings.lite_24x7.resolution_p", Unit: UnitPixels},
	{Key: "lite_24x7_footage_ttl", Category: CategoryRecording, Path: "settings.lite_24x7_footage_ttl", Unit: UnitHours},
	{Key: "offline_motion_enabled", Category: CategoryRecording, Path: "settings.offline_motion_event_settings.enabled"},
}

var floodlightSensors = []Description{
	{Key: "floodlight_on", Category: CategoryFloodlight, Path: "health.floodlight_on"},
	{Key: "white_led_on", Category: CategoryFloodlight, Path: "health.white_led_on"},
	{Key: "floodlight_duration", Category: CategoryFloodlight, Path: "settings.floodlight_settings.duration", Unit: UnitSeconds},
	{Key: "floodlight_brightness", Category: CategoryFloodlight, Path: "settings.floodlight_settings.brightness"},
	{Key: "floodlight_always_on", Category: CategoryFloodlight, Path: "settings.floodlight_settings.always_on"},
}

var radarSensors = []Description{
	{Key: "birds_eye_view_enabled", Category: CategoryRadar, Path: "settings.radar_settings.birds_eye_view_enabled"},
	{Key: "bez_feature_enabled", Category: CategoryRadar, Path: "settings.radar_settings.bez_feature_enabled"},
	{Key: "bez_filtering_enabled", Category: CategoryRadar, Path: "settings.radar_settings.bez_filtering_enabled"},
	{Key: "installation_height", Category: CategoryRadar, Path: "settings.radar_settings.installation_height", Unit: UnitMeters},
}

var localProcessingSensors = []Description{
	{Key: "sheila_cv_processing_enabled", Category: CategoryLocalProcessing, Path: "settings.sheila_settings.cv_processing_enabled"},
	{Key: "sheila_local_storage_enabled", Category: CategoryLocalProcessing, Path: "settings.sheila_settings.local_storage_enabled"},
	{Key: "sheila_camera_eligible", Category: CategoryLocalProcessing, Path: "features.sheila_camera_eligible"},
	{Key: "sheila_camera_processing_eligible", Category: CategoryLocalProcessing, Path: "features.sheila_camera_processing_eligible"},
}

var featureSensors = []Description{
	{Key: "cfes_eligible", Category: CategoryFeatures, Path: "features.cfes_eligible"},
	{Key: "motions_enabled", Category: CategoryFeatures, Path: "features.motions_enabled"},
	{Key: "show_recordings", Category: CategoryFeatures, Path: "features.show_recordings"},
	{Key: "show_vod_settings", Category: CategoryFeatures, Path: "features.show_vod_settings"},
	{Key: "recording_mode", Category: CategoryFeatures, Path: "features.video_recording.recording_mode"},
	{Key: "recording_enabled", Category: CategoryFeatures, Path: "features.video_recording.recording_enabled"},
	{Key: "recording_state", Category: CategoryFeatures, Path: "features.video_recording.recording_state"},
	{Key: "recording_24x7_eligible", Category: CategoryFeatures, Path: "features.recording_24x7_eligible"},
	{Key: "dynamic_network_switching_eligible", Category: CategoryFeatures, Path: "features.dynamic_network_switching_eligible"},
}

var deviceStatusSensors = []Description{
	{Key: "night_mode_on", Category: CategoryDeviceStatus, Path: "health.night_mode_on"},
	{Key: "siren_on", Category: CategoryDeviceStatus, Path: "health.siren_on"},
	{Key: "hatch_open", Category: CategoryDeviceStatus, Path: "health.hatch_open"},
	{Key: "stolen", Category: CategoryDeviceStatus, Path: "stolen"},
	{Key: "owned", Category: CategoryDeviceStatus, Path: "owned"},
	{Key: "subscribed", Category: CategoryDeviceStatus, Path: "subscribed"},
	{Key: "is_sidewalk_gateway", Category: CategoryDeviceStatus, Path: "is_sidewalk_gateway"},
	{Key: "device_kind", Category: CategoryDeviceStatus, Path: "kind"},
}
