/*
包 openaicompat 提供 OpenAI 兼容服务商的通用适配基座。

DeepSeek、OpenAI、Qwen 等服务商嵌入 [Provider]，只需声明身份、模型目录、
价格表、默认地址与可选的 RequestHook。基座负责构造 choices/messages
信封、发送单次请求、错误分类与回答归一化。
*/
package openaicompat
