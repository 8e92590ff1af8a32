/*
包 openai 提供 OpenAI Chat Completions 的元数据分析适配实现，
嵌入 openaicompat.Provider，支持图像分析（image_url 内容段，内联数据
编码为 data URL）与 response_format json_object。
*/
package openai
